package controllers

import (
	"github.com/sanchawla17/Invosight/database"
	"github.com/sanchawla17/Invosight/stats"

	"github.com/gofiber/fiber/v2"
)

func GetClients(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	svc := stats.NewService(database.DB)
	clients, err := svc.ListClients(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(clients)
}

// GetClientDetail resolves a key previously returned by GetClients.
// Malformed keys and unmatched keys map to distinct errors in the global
// handler (400 vs 404).
func GetClientDetail(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	svc := stats.NewService(database.DB)
	detail, err := svc.GetClientDetail(c.Context(), userID, c.Params("clientKey"))
	if err != nil {
		return err
	}
	return c.JSON(detail)
}
