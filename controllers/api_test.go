package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sanchawla17/Invosight/database"
	"github.com/sanchawla17/Invosight/middlewares"
	"github.com/sanchawla17/Invosight/models"
	"github.com/sanchawla17/Invosight/routes"
	"github.com/sanchawla17/Invosight/stats"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET_KEY", "api-test-secret")
	os.Setenv("SHARE_TOKEN_SECRET", "api-test-share-secret")
	os.Exit(m.Run())
}

// newTestApp stands up the full route tree against an in-memory database.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Invoice{}, &models.IdempotencyKey{}))
	database.DB = db

	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	routes.Register(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any, headers map[string]string) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func registerUser(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	code, body := doJSON(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"name":     "Test User",
		"email":    email,
		"password": "hunter2hunter2",
	}, nil)
	require.Equal(t, fiber.StatusCreated, code, string(body))

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func invoicePayload(number, client, email string, total float64, daysAgo int) fiber.Map {
	date := time.Now().UTC().AddDate(0, 0, -daysAgo)
	return fiber.Map{
		"invoiceNumber": number,
		"invoiceDate":   date.Format(time.RFC3339),
		"billTo":        fiber.Map{"clientName": client, "email": email},
		"items": []fiber.Map{
			{"name": "Work", "quantity": 1, "unitPrice": total, "taxPercent": 0},
		},
		"paymentTerms": "Net 30",
	}
}

func createInvoice(t *testing.T, app *fiber.App, token string, payload fiber.Map) models.Invoice {
	t.Helper()

	code, body := doJSON(t, app, "POST", "/api/invoices", token, payload, nil)
	require.Equal(t, fiber.StatusCreated, code, string(body))
	var inv models.Invoice
	require.NoError(t, json.Unmarshal(body, &inv))
	return inv
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)

	registerUser(t, app, "alice@example.com")

	// Duplicate email is rejected.
	code, _ := doJSON(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"name":     "Alice Again",
		"email":    "alice@example.com",
		"password": "hunter2hunter2",
	}, nil)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, body := doJSON(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "hunter2hunter2",
	}, nil)
	require.Equal(t, fiber.StatusOK, code, string(body))
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotEmpty(t, out.Token)

	code, _ = doJSON(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}, nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestAuthRequired(t *testing.T) {
	app := newTestApp(t)

	code, _ := doJSON(t, app, "GET", "/api/stats", "", nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestAuthRateLimit(t *testing.T) {
	t.Setenv("AUTH_RATE_LIMIT_MAX", "3")
	app := newTestApp(t)

	login := fiber.Map{"email": "limited@example.com", "password": "wrong-password"}
	for i := 0; i < 3; i++ {
		code, _ := doJSON(t, app, "POST", "/api/auth/login", "", login, nil)
		require.NotEqual(t, fiber.StatusTooManyRequests, code)
	}
	code, _ := doJSON(t, app, "POST", "/api/auth/login", "", login, nil)
	assert.Equal(t, fiber.StatusTooManyRequests, code)
}

func TestInvoiceLifecycle(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "bob@example.com")

	inv := createInvoice(t, app, token, invoicePayload("INV-001", "Acme", "billing@acme.com", 500, 0))
	assert.Equal(t, models.StatusUnpaid, inv.Status)
	assert.Equal(t, 500.0, inv.Total)
	require.NotNil(t, inv.DueDate, "Net 30 should derive a due date")

	code, body := doJSON(t, app, "GET", fmt.Sprintf("/api/invoices/%d", inv.ID), token, nil, nil)
	require.Equal(t, fiber.StatusOK, code)

	// Mark paid via full update.
	payload := invoicePayload("INV-001", "Acme", "billing@acme.com", 500, 0)
	payload["status"] = models.StatusPaid
	code, body = doJSON(t, app, "PUT", fmt.Sprintf("/api/invoices/%d", inv.ID), token, payload, nil)
	require.Equal(t, fiber.StatusOK, code, string(body))
	var updated models.Invoice
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, models.StatusPaid, updated.Status)

	code, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/api/invoices/%d", inv.ID), token, nil, nil)
	require.Equal(t, fiber.StatusOK, code)

	code, _ = doJSON(t, app, "GET", fmt.Sprintf("/api/invoices/%d", inv.ID), token, nil, nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestInvoiceOwnership(t *testing.T) {
	app := newTestApp(t)
	owner := registerUser(t, app, "owner@example.com")
	other := registerUser(t, app, "other@example.com")

	inv := createInvoice(t, app, owner, invoicePayload("INV-100", "Acme", "", 100, 0))

	code, _ := doJSON(t, app, "GET", fmt.Sprintf("/api/invoices/%d", inv.ID), other, nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestStatsEndpoint(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "stats@example.com")

	createInvoice(t, app, token, invoicePayload("INV-1", "Acme", "billing@acme.com", 100, 1))
	createInvoice(t, app, token, invoicePayload("INV-2", "Beta LLC", "", 250, 3))

	code, body := doJSON(t, app, "GET", "/api/stats?range=7&interval=day", token, nil, nil)
	require.Equal(t, fiber.StatusOK, code, string(body))

	var res stats.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, 7, res.RangeDays)
	assert.Equal(t, stats.IntervalDay, res.Interval)
	assert.Len(t, res.StatusBreakdown, 3)
	assert.Equal(t, 350.0, res.Totals.TotalInvoiced)
	assert.Len(t, res.TopClients, 2)

	// Out-of-range params coerce to defaults rather than erroring.
	code, body = doJSON(t, app, "GET", "/api/stats?range=45&interval=fortnight", token, nil, nil)
	require.Equal(t, fiber.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, 30, res.RangeDays)
	assert.Equal(t, stats.IntervalDay, res.Interval)
}

func TestClientEndpoints(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "clients@example.com")

	createInvoice(t, app, token, invoicePayload("INV-1", "Acme", "billing@acme.com", 100, 1))

	code, body := doJSON(t, app, "GET", "/api/clients", token, nil, nil)
	require.Equal(t, fiber.StatusOK, code, string(body))
	var list []stats.ClientSummary
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "email:billing@acme.com", list[0].ClientKey)

	code, _ = doJSON(t, app, "GET", "/api/clients/email%3Abilling%40acme.com", token, nil, nil)
	assert.Equal(t, fiber.StatusOK, code)

	// Malformed key and unknown client map to distinct statuses.
	code, _ = doJSON(t, app, "GET", "/api/clients/garbage", token, nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = doJSON(t, app, "GET", "/api/clients/name%3AGhost", token, nil, nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestShareLink(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "share@example.com")

	inv := createInvoice(t, app, token, invoicePayload("INV-1", "Acme", "", 100, 0))

	code, body := doJSON(t, app, "POST", fmt.Sprintf("/api/invoices/%d/share", inv.ID), token, nil, nil)
	require.Equal(t, fiber.StatusOK, code, string(body))
	var out struct {
		ShareToken string `json:"shareToken"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.ShareToken)

	// Public fetch needs no auth.
	code, body = doJSON(t, app, "GET", "/api/invoices/share/"+out.ShareToken, "", nil, nil)
	require.Equal(t, fiber.StatusOK, code, string(body))

	code, _ = doJSON(t, app, "GET", "/api/invoices/share/bogus-token", "", nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/invoices/%d/share/disable", inv.ID), token, nil, nil)
	require.Equal(t, fiber.StatusOK, code)

	code, _ = doJSON(t, app, "GET", "/api/invoices/share/"+out.ShareToken, "", nil, nil)
	assert.Equal(t, fiber.StatusForbidden, code)
}

func TestIdempotencyReplay(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "idem@example.com")

	payload := invoicePayload("INV-1", "Acme", "", 100, 0)
	headers := map[string]string{"Idempotency-Key": "create-inv-1"}

	code, first := doJSON(t, app, "POST", "/api/invoices", token, payload, headers)
	require.Equal(t, fiber.StatusCreated, code, string(first))

	code, second := doJSON(t, app, "POST", "/api/invoices", token, payload, headers)
	require.Equal(t, fiber.StatusCreated, code)
	assert.Equal(t, string(first), string(second), "replay should return the stored response")

	var count int64
	require.NoError(t, database.DB.Model(&models.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Same key with a different body is a conflict.
	other := invoicePayload("INV-2", "Acme", "", 200, 0)
	code, _ = doJSON(t, app, "POST", "/api/invoices", token, other, headers)
	assert.Equal(t, fiber.StatusConflict, code)
}
