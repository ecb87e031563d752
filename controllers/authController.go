package controllers

import (
	"net/mail"

	"github.com/sanchawla17/Invosight/database"
	"github.com/sanchawla17/Invosight/middlewares"
	"github.com/sanchawla17/Invosight/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type registerInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func Register(c *fiber.Ctx) error {
	var data registerInput
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	var mailExist models.User
	database.DB.Where("email = ?", data.Email).First(&mailExist)
	if mailExist.Email != "" {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "email already exists",
		})
	}

	user := models.User{
		Name:  data.Name,
		Email: data.Email,
	}
	user.SetPassword(data.Password)
	if err := database.DB.Create(&user).Error; err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Could not create user",
			"error":   err.Error(),
		})
	}

	token, err := middlewares.GenerateJWT(user.Id)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"message": "Could not issue token"})
	}

	c.Status(fiber.StatusCreated)
	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

func Login(c *fiber.Ctx) error {
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return err
	}

	if _, err := mail.ParseAddress(data["email"]); err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Invalid email format",
		})
	}

	var user models.User
	database.DB.Where("email = ?", data["email"]).First(&user)

	if _, err := uuid.Parse(user.Id); err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	if err := user.ComparePassword(data["password"]); err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	token, err := middlewares.GenerateJWT(user.Id)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"message": "Could not issue token",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.Id,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

func Logout(c *fiber.Ctx) error {
	// Bearer tokens are stateless; the client just drops its copy.
	return c.JSON(fiber.Map{
		"message": "success",
	})
}

func GetMe(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		return err
	}
	return c.JSON(user)
}

type profileInput struct {
	Name         string `json:"name"`
	BusinessName string `json:"businessName"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
}

func UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var data profileInput
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		return err
	}

	if data.Name != "" {
		user.Name = data.Name
	}
	user.BusinessName = data.BusinessName
	user.Address = data.Address
	user.Phone = data.Phone

	if err := database.DB.Save(&user).Error; err != nil {
		return err
	}
	return c.JSON(user)
}
