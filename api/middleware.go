package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/quire/pkg/auth"
	"github.com/papercomputeco/quire/pkg/llm"
)

const (
	localUser  = "user"
	localToken = "token"
)

// authenticate resolves the bearer token into a user for the /v1 routes
// that need one.
func (s *Server) authenticate(c *fiber.Ctx) error {
	token := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(llm.ErrorResponse{Error: msgSignIn})
	}

	user, err := s.config.Verifier.Verify(token)
	if err != nil {
		s.logger.Debug("rejected bearer token", "error", err)
		return c.Status(fiber.StatusUnauthorized).JSON(llm.ErrorResponse{Error: msgSignIn})
	}

	c.Locals(localUser, user)
	c.Locals(localToken, token)
	return c.Next()
}

func currentUser(c *fiber.Ctx) *auth.User {
	user, _ := c.Locals(localUser).(*auth.User)
	return user
}

func currentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(localToken).(string)
	return token
}
