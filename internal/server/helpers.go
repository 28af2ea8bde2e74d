package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"blogshare/internal/middleware"
	"blogshare/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten signals that an error response has already been sent.
var errResponseWritten = errors.New("response already written")

// parseID parses a positive numeric path parameter. On failure a 400 is written and
// errResponseWritten is returned.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, ok := models.ParseID(c.Params(param))
	if !ok {
		if err := models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param)); err != nil {
			return 0, err
		}
		return 0, errResponseWritten
	}
	return id, nil
}

// respondError writes err with the status matching its code.
func respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// handled reports whether err only means a response was already sent.
func handled(err error) bool {
	return errors.Is(err, errResponseWritten)
}

// bearerToken returns the token of an "Authorization: Bearer" header, or "".
func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// ownerIDField accepts owner_id as either a JSON string or a JSON number.
type ownerIDField string

func (f *ownerIDField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = ownerIDField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = ownerIDField(n.String())
	return nil
}

func (f *ownerIDField) UnmarshalText(text []byte) error {
	*f = ownerIDField(text)
	return nil
}
