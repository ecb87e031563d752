package controllers

import (
	"errors"
	"time"

	"github.com/sanchawla17/Invosight/database"
	"github.com/sanchawla17/Invosight/middlewares"
	"github.com/sanchawla17/Invosight/models"
	"github.com/sanchawla17/Invosight/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type invoiceInput struct {
	InvoiceNumber string               `json:"invoiceNumber" validate:"required"`
	InvoiceDate   time.Time            `json:"invoiceDate" validate:"required"`
	DueDate       *time.Time           `json:"dueDate"`
	BillFrom      models.BillFrom      `json:"billFrom"`
	BillTo        models.BillTo        `json:"billTo"`
	Items         []models.InvoiceItem `json:"items" validate:"dive"`
	Notes         string               `json:"notes"`
	PaymentTerms  string               `json:"paymentTerms"`
	Status        string               `json:"status"` // honored on update only
}

func CreateInvoice(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var data invoiceInput
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	if data.DueDate == nil {
		data.DueDate = utils.CalculateDueDate(data.InvoiceDate, data.PaymentTerms)
	}
	subtotal, taxTotal, total := utils.CalculateTotals(data.Items)

	invoice := models.Invoice{
		UserID:        userID,
		InvoiceNumber: data.InvoiceNumber,
		InvoiceDate:   data.InvoiceDate,
		DueDate:       data.DueDate,
		BillFrom:      data.BillFrom,
		BillTo:        data.BillTo,
		Items:         data.Items,
		Notes:         data.Notes,
		PaymentTerms:  data.PaymentTerms,
		Status:        models.StatusUnpaid,
		Subtotal:      subtotal,
		TaxTotal:      taxTotal,
		Total:         total,
	}

	if err := database.DB.Create(&invoice).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create invoice",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(invoice)
}

func GetInvoices(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var invoices []models.Invoice
	if err := database.DB.
		Where("user_id = ?", userID).
		Order("invoice_date DESC, id DESC").
		Find(&invoices).Error; err != nil {
		return err
	}
	return c.JSON(invoices)
}

// findOwnedInvoice loads an invoice and enforces ownership: 404 for an
// unknown ID, 401 when it belongs to someone else.
func findOwnedInvoice(c *fiber.Ctx, userID string) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := database.DB.First(&invoice, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Invoice not found")
		}
		return nil, err
	}
	if invoice.UserID != userID {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Not authorized")
	}
	return &invoice, nil
}

func GetInvoice(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	invoice, err := findOwnedInvoice(c, userID)
	if err != nil {
		return err
	}
	return c.JSON(invoice)
}

func UpdateInvoice(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	invoice, err := findOwnedInvoice(c, userID)
	if err != nil {
		return err
	}

	var data invoiceInput
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	if data.DueDate == nil {
		data.DueDate = utils.CalculateDueDate(data.InvoiceDate, data.PaymentTerms)
	}
	subtotal, taxTotal, total := utils.CalculateTotals(data.Items)

	invoice.InvoiceNumber = data.InvoiceNumber
	invoice.InvoiceDate = data.InvoiceDate
	invoice.DueDate = data.DueDate
	invoice.BillFrom = data.BillFrom
	invoice.BillTo = data.BillTo
	invoice.Items = data.Items
	invoice.Notes = data.Notes
	invoice.PaymentTerms = data.PaymentTerms
	if data.Status != "" {
		invoice.Status = data.Status
	}
	invoice.Subtotal = subtotal
	invoice.TaxTotal = taxTotal
	invoice.Total = total

	if err := database.DB.Save(invoice).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update invoice",
			"error":   err.Error(),
		})
	}
	return c.JSON(invoice)
}

func DeleteInvoice(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	invoice, err := findOwnedInvoice(c, userID)
	if err != nil {
		return err
	}

	if err := database.DB.Delete(invoice).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Invoice deleted successfully"})
}

func CreateShareLink(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	invoice, err := findOwnedInvoice(c, userID)
	if err != nil {
		return err
	}

	invoice.ShareEnabled = true
	if err := database.DB.Save(invoice).Error; err != nil {
		return err
	}

	shareToken, err := utils.GenerateShareToken(invoice.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Share tokens not configured",
		})
	}
	return c.JSON(fiber.Map{"shareToken": shareToken})
}

func DisableShareLink(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	invoice, err := findOwnedInvoice(c, userID)
	if err != nil {
		return err
	}

	invoice.ShareEnabled = false
	if err := database.DB.Save(invoice).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Share link disabled"})
}

// GetSharedInvoice serves a read-only invoice to anyone holding a valid
// share token. No auth; the token is the capability.
func GetSharedInvoice(c *fiber.Ctx) error {
	invoiceID, err := utils.ParseShareToken(c.Params("token"))
	if err != nil {
		if errors.Is(err, utils.ErrShareTokenExpired) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Share link expired"})
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid share token"})
	}

	var invoice models.Invoice
	if err := database.DB.First(&invoice, "id = ?", invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Invoice not found"})
		}
		return err
	}
	if !invoice.ShareEnabled {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Share link disabled"})
	}

	// Owner identity stays private on the public surface.
	invoice.UserID = ""
	return c.JSON(invoice)
}
