package services

import (
	"strings"

	"grindstake/models"
	"grindstake/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// EnsureUser idempotently creates the user row for a wallet address.
// The gateway has already verified wallet ownership; we only persist.
func EnsureUser(db *gorm.DB, walletAddress string) (*models.User, error) {
	walletAddress = strings.ToLower(walletAddress)
	if walletAddress == "" {
		return nil, &ValidationError{Field: "wallet_address", Reason: "is required"}
	}

	var user models.User
	err := db.Where("wallet_address = ?", walletAddress).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		user = models.User{
			ID:            uuid.NewString(),
			WalletAddress: walletAddress,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		utils.WithFields(logrus.Fields{"user_id": user.ID}).Info("user created")
		return &user, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Connect handles POST /users/connect — called by the gateway after
// wallet verification to materialize the user.
func (s *UserService) Connect(c *fiber.Ctx) error {
	var req struct {
		WalletAddress string `json:"wallet_address"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	user, err := EnsureUser(s.DB, req.WalletAddress)
	if err != nil {
		return challengeError(c, err)
	}
	return c.JSON(user)
}

// Me handles GET /users/me.
func (s *UserService) Me(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", callerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch user"})
	}
	return c.JSON(user)
}

// UpdateMe handles PATCH /users/me — profile fields only.
func (s *UserService) UpdateMe(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if len(updates) == 0 {
		return s.Me(c)
	}

	if err := s.DB.Model(&models.User{}).Where("id = ?", callerID).Updates(updates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update user"})
	}
	return s.Me(c)
}
