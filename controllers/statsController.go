package controllers

import (
	"github.com/sanchawla17/Invosight/database"
	"github.com/sanchawla17/Invosight/stats"

	"github.com/gofiber/fiber/v2"
)

func GetStats(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	svc := stats.NewService(database.DB)
	result, err := svc.BuildStats(c.Context(), userID, c.Query("range"), c.Query("interval"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}
