package server

import (
	"log/slog"
	"strings"

	"blogshare/internal/middleware"
	"blogshare/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CallerIdentity resolves who is performing a post mutation.
//
// With a valid bearer token the token subject is the caller and a body owner id naming
// anyone else is rejected with 403. Without a token the body owner id is trusted unless
// the server requires session tokens, in which case the request is rejected with 401.
func (s *Server) CallerIdentity(c *fiber.Ctx, bodyOwnerID string) (string, error) {
	bodyOwnerID = strings.TrimSpace(bodyOwnerID)

	raw := bearerToken(c)
	if raw == "" {
		if s.config.RequireSessionToken {
			return "", models.NewUnauthorizedError("Authentication required")
		}
		return bodyOwnerID, nil
	}

	userID, err := s.tokens.Verify(raw)
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "rejected session token",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		return "", models.NewUnauthorizedError("Invalid or expired token")
	}

	if bodyOwnerID != "" {
		claimed, ok := models.ParseID(bodyOwnerID)
		if !ok || claimed != userID {
			return "", models.NewForbiddenError("owner_id does not match the authenticated user")
		}
	}

	c.Locals("userID", userID)
	c.SetUserContext(middleware.WithUserID(c.UserContext(), userID))

	return models.FormatID(userID), nil
}
