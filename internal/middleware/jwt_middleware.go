package middleware

import (
	"log"
	"strings"

	"garasi/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired is a Fiber middleware guarding every listing route. It
// extracts the bearer token, validates it, resolves the subject to a
// live user and stores the identity in the request locals. Each failure
// mode answers 401 with a generic message; detail stays in the logs.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid token",
			})
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			log.Printf("JWT claims missing user_id")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid token",
			})
		}

		// The token may outlive the account it was issued for.
		user, err := authService.GetUserByID(userID)
		if err != nil {
			log.Printf("Token subject %s could not be resolved: %v", userID, err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "User not found",
			})
		}

		// Store identity in Fiber context for subsequent handlers
		c.Locals("user_id", user.ID)
		c.Locals("user", user)

		// Continue to the next handler
		return c.Next()
	}
}
