package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-hq/helpdesk-service/internal/api/dto"
	apperrors "github.com/helpdesk-hq/helpdesk-service/pkg/util"
)

func runDecode(t *testing.T, body string) (dto.CreateTicketRequest, error) {
	t.Helper()
	app := fiber.New()

	var req dto.CreateTicketRequest
	var decodeErr error
	app.Post("/", func(c *fiber.Ctx) error {
		decodeErr = decodeStrict(c, &req)
		return nil
	})

	httpReq := httptest.NewRequest("POST", "/", strings.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	_, err := app.Test(httpReq)
	require.NoError(t, err)
	return req, decodeErr
}

func TestDecodeStrictValid(t *testing.T) {
	req, err := runDecode(t, `{"subject":"VPN down","location":"Remote","email":"a@x.com","details":"cannot connect since this morning"}`)
	require.NoError(t, err)
	assert.Equal(t, "VPN down", req.Subject)
	assert.Equal(t, "Remote", req.Location)
}

func TestDecodeStrictUnknownField(t *testing.T) {
	_, err := runDecode(t, `{"subject":"VPN down","priority":"urgent"}`)
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestDecodeStrictMalformed(t *testing.T) {
	_, err := runDecode(t, `{"subject":`)
	require.Error(t, err)
}
