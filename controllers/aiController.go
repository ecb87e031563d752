package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/sanchawla17/Invosight/ai"
	"github.com/sanchawla17/Invosight/database"
	"github.com/sanchawla17/Invosight/models"
	"github.com/sanchawla17/Invosight/stats"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	assistantOnce sync.Once
	assistant     *ai.Assistant
	assistantErr  error
)

func getAssistant() (*ai.Assistant, error) {
	assistantOnce.Do(func() {
		assistant, assistantErr = ai.NewAssistant()
	})
	return assistant, assistantErr
}

func ParseInvoiceFromText(c *fiber.Ctx) error {
	var data struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&data); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(data.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Text is required"})
	}

	a, err := getAssistant()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "AI assistant not configured"})
	}

	parsed, err := a.ParseInvoiceText(c.Context(), data.Text)
	if err != nil {
		log.Error().Err(err).Msg("parsing invoice text failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to parse invoice data from text.",
		})
	}
	return c.JSON(parsed)
}

var dataURLPrefix = regexp.MustCompile(`^data:.*;base64,`)

const maxImageBytes = 4 * 1024 * 1024

func ParseInvoiceFromImage(c *fiber.Ctx) error {
	var data struct {
		ImageBase64 string `json:"imageBase64"`
		MimeType    string `json:"mimeType"`
		ContextText string `json:"contextText"`
	}
	if err := c.BodyParser(&data); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if data.ImageBase64 == "" || data.MimeType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Image data and mime type are required"})
	}

	cleaned := strings.TrimSpace(dataURLPrefix.ReplaceAllString(data.ImageBase64, ""))
	if cleaned == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid image data"})
	}
	// Estimate the decoded size without decoding.
	if (len(cleaned)*3+3)/4 > maxImageBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"message": "Image is too large (max 4MB)."})
	}

	a, err := getAssistant()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "AI assistant not configured"})
	}

	parsed, err := a.ParseInvoiceImage(c.Context(), data.MimeType, cleaned, data.ContextText)
	if err != nil {
		log.Error().Err(err).Msg("parsing invoice image failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to parse invoice data from image.",
		})
	}
	return c.JSON(parsed)
}

func GenerateReminderEmail(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var data struct {
		InvoiceID uint   `json:"invoiceId"`
		Tone      string `json:"tone"`
	}
	if err := c.BodyParser(&data); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if data.InvoiceID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invoice ID is required"})
	}

	var invoice models.Invoice
	if err := database.DB.First(&invoice, "id = ? AND user_id = ?", data.InvoiceID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Invoice not found"})
		}
		return err
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	dueDate := "Not provided"
	if invoice.DueDate != nil {
		dueDate = invoice.DueDate.Format("2006-01-02")
	}
	senderOrg := user.BusinessName
	if senderOrg == "" {
		senderOrg = invoice.BillFrom.BusinessName
	}

	a, err := getAssistant()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "AI assistant not configured"})
	}

	reminder, err := a.GenerateReminder(c.Context(), ai.ReminderInput{
		ClientName:    invoice.BillTo.ClientName,
		InvoiceNumber: invoice.InvoiceNumber,
		AmountDue:     invoice.Total,
		DueDate:       dueDate,
		Tone:          data.Tone,
		SenderName:    user.Name,
		SenderOrg:     senderOrg,
	})
	if err != nil {
		log.Error().Err(err).Msg("generating reminder email failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to generate reminder email.",
		})
	}
	return c.JSON(fiber.Map{"reminderText": reminder})
}

func GetDashboardSummary(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var invoices []models.Invoice
	if err := database.DB.
		Where("user_id = ?", userID).
		Order("invoice_date DESC, id DESC").
		Find(&invoices).Error; err != nil {
		return err
	}

	if len(invoices) == 0 {
		return c.JSON(fiber.Map{"insights": []string{"No invoice data available to generate insights."}})
	}

	var paidCount int
	var totalRevenue, totalOutstanding float64
	for _, inv := range invoices {
		if inv.Status == models.StatusPaid {
			paidCount++
			totalRevenue += inv.Total
		} else {
			totalOutstanding += inv.Total
		}
	}
	recent := invoices
	if len(recent) > 5 {
		recent = recent[:5]
	}
	recentLines := make([]string, 0, len(recent))
	for _, inv := range recent {
		recentLines = append(recentLines, fmt.Sprintf("Invoice #%s for %.2f with status %s", inv.InvoiceNumber, inv.Total, inv.Status))
	}

	dataSummary := fmt.Sprintf(`- Total number of invoices: %d
- Total paid invoices: %d
- Total unpaid/pending invoices: %d
- Total revenue from paid invoices: %.2f
- Total outstanding amount from unpaid/pending invoices: %.2f
- Recent invoices (last 5): %s`,
		len(invoices), paidCount, len(invoices)-paidCount,
		totalRevenue, totalOutstanding, strings.Join(recentLines, ", "))

	a, err := getAssistant()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "AI assistant not configured"})
	}

	insights, err := a.DashboardInsights(c.Context(), dataSummary)
	if err != nil {
		log.Error().Err(err).Msg("generating dashboard insights failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to generate dashboard insights.",
		})
	}
	return c.JSON(fiber.Map{"insights": insights})
}

func GetStatsInsights(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	svc := stats.NewService(database.DB)
	result, err := svc.BuildStats(c.Context(), userID, c.Query("range"), c.Query("interval"))
	if err != nil {
		return err
	}

	hasData := len(result.RevenueSeries) > 0 || len(result.TopClients) > 0
	for _, sc := range result.StatusBreakdown {
		if sc.Count > 0 {
			hasData = true
		}
	}
	if !hasData {
		return c.JSON(ai.StatsInsights{Summary: "Not enough data", Insights: []string{}, Actions: []string{}})
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}

	a, err := getAssistant()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "AI assistant not configured"})
	}

	insights, err := a.AnalyzeStats(c.Context(), payload)
	if err != nil {
		log.Error().Err(err).Msg("generating stats insights failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to generate stats insights.",
		})
	}
	return c.JSON(insights)
}
