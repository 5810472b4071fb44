package middleware

import (
	"strings"

	"github.com/Sankura23/woofadaar-moderation/internal/config"
	"github.com/Sankura23/woofadaar-moderation/internal/dto"
	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleRequired gates a route on moderation privileges. A caller passes if:
// 1. The X-Admin-Token header matches the configured ops token
// 2. Their email is on the config allowlist
// 3. Their stored Role is at least the required role
func RoleRequired(db *gorm.DB, cfg *config.Config, role string) fiber.Handler {
	allowedEmails := parseCSV(cfg.ModeratorEmails)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}

		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Unauthorized"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Invalid claims"))
		}

		email, _ := claims["email"].(string)
		sub, _ := claims["sub"].(string)

		if role == models.RoleModerator && contains(allowedEmails, email) {
			return c.Next()
		}

		if sub != "" {
			userID, err := uuid.Parse(sub)
			if err == nil {
				var user models.User
				if err := db.First(&user, "id = ?", userID).Error; err == nil {
					if roleAtLeast(user.Role, role) {
						return c.Next()
					}
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.Fail("Moderator access required"))
	}
}

func roleAtLeast(have, want string) bool {
	rank := func(r string) int {
		switch r {
		case models.RoleAdmin:
			return 2
		case models.RoleModerator:
			return 1
		}
		return 0
	}
	return rank(have) >= rank(want)
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
