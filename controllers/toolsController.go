package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

var fxHTTPClient = &http.Client{Timeout: 10 * time.Second}

const fxBaseURL = "https://open.er-api.com/v6/latest"

// ConvertCurrency converts an amount between currencies using a public FX
// rate API. Reference tooling only; rates are not stored.
func ConvertCurrency(c *fiber.Ctx) error {
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil || amount < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid amount"})
	}
	from := strings.ToUpper(strings.TrimSpace(c.Query("from")))
	to := strings.ToUpper(strings.TrimSpace(c.Query("to")))
	if from == "" || to == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid currency code"})
	}

	resp, err := fxHTTPClient.Get(fmt.Sprintf("%s/%s", fxBaseURL, url.PathEscape(from)))
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "FX service unavailable"})
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "FX service unavailable"})
	}

	var data struct {
		Result        string             `json:"result"`
		Rates         map[string]float64 `json:"rates"`
		LastUpdateUTC string             `json:"time_last_update_utc"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil || data.Result != "success" || data.Rates == nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "FX service error"})
	}

	rate, ok := data.Rates[to]
	if !ok || rate == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Unsupported currency"})
	}

	timestamp := data.LastUpdateUTC
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(http.TimeFormat)
	}

	return c.JSON(fiber.Map{
		"amount":    amount,
		"from":      from,
		"to":        to,
		"rate":      rate,
		"converted": amount * rate,
		"timestamp": timestamp,
	})
}
