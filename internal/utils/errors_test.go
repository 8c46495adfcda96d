package utils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "bad request", err: NewBadRequestError("date must be YYYY-MM-DD", nil), wantStatus: fiber.StatusBadRequest, wantCode: "BAD_REQUEST"},
		{name: "not found", err: NewNotFoundError("import batch"), wantStatus: fiber.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "fiber error", err: fiber.ErrRequestEntityTooLarge, wantStatus: fiber.StatusRequestEntityTooLarge, wantCode: "HTTP_ERROR"},
		{name: "plain error", err: errors.New("boom"), wantStatus: fiber.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
			app.Get("/", func(c fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantStatus, StatusOf(tt.err))

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body["code"])
			assert.Equal(t, false, body["success"])
		})
	}
}
