package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Name   string  `json:"name" binding:"required,max=5"`
	Email  string  `json:"email" binding:"required,email"`
	UserID *uint64 `json:"user_id" binding:"required"`
}

func bind(t *testing.T, body string) error {
	t.Helper()
	SetupValidator()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var req signupRequest
	return TranslateBindError(c.ShouldBindJSON(&req))
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.KindValidation, de.Kind)
	return de.Fields
}

func TestTranslateBindError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected map[string]string
	}{
		{
			name: "missing fields",
			body: `{"name": "ann"}`,
			expected: map[string]string{
				"email":   "Missing data for required field.",
				"user_id": "Missing data for required field.",
			},
		},
		{
			name: "format and length",
			body: `{"name": "annabel", "email": "nope", "user_id": 1}`,
			expected: map[string]string{
				"name":  "Longer than maximum length 5.",
				"email": "Not a valid email address.",
			},
		},
		{
			name:     "string where integer expected",
			body:     `{"name": "ann", "email": "a@b.co", "user_id": "seven"}`,
			expected: map[string]string{"user_id": "Not a valid integer."},
		},
		{
			name:     "number where string expected",
			body:     `{"name": 42, "email": "a@b.co", "user_id": 1}`,
			expected: map[string]string{"name": "Not a valid string."},
		},
		{
			name:     "negative id",
			body:     `{"name": "ann", "email": "a@b.co", "user_id": -1}`,
			expected: map[string]string{"user_id": "Not a valid integer."},
		},
		{
			name:     "not an object",
			body:     `[1, 2]`,
			expected: map[string]string{"_schema": "Invalid input type."},
		},
		{
			name:     "broken json",
			body:     `{"name": `,
			expected: map[string]string{"_schema": "Invalid JSON body."},
		},
		{
			name:     "empty body",
			body:     ``,
			expected: map[string]string{"_schema": "No input data provided."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fieldsOf(t, bind(t, tt.body)))
		})
	}
}

func TestTranslateBindError_PassThrough(t *testing.T) {
	assert.NoError(t, TranslateBindError(nil))

	field := shared.NewFieldError("price", "Not a valid number.")
	assert.Same(t, field, TranslateBindError(field))

	tooLarge := &http.MaxBytesError{Limit: 10}
	assert.True(t, errors.Is(TranslateBindError(tooLarge), tooLarge))
}
