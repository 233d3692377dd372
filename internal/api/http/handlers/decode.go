package handlers

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/helpdesk-hq/helpdesk-service/pkg/util"
)

// decodeStrict parses a JSON body into v, rejecting unknown fields so
// unknown-shape input fails validation instead of being silently coerced.
func decodeStrict(c *fiber.Ctx, v any) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}
