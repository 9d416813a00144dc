package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanoush/storefront/internal/apperrors"
)

func TestRender_JSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		data := map[string]any{"key1": 1, "key2": "222", "price": decimal.RequireFromString("19.99")}
		JSON(w, data)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"key1":1,"key2":"222","price":19.99}`+"\n", string(body), "decimal should be rendered as number")
}

func TestRender_ServiceError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		message := "something terrible happened"
		ServiceError(w, message, http.StatusForbidden)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{
			"success": false,
			"error": "service_error",
			"message": "something terrible happened"
		}`,
		string(body),
	)
}

type errorLogger struct {
	calls int
}

func (l *errorLogger) Error(string, ...any) { l.calls++ }

func TestRender_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     int
		expected string
		logged   bool
	}{
		{
			name:     "conflict",
			err:      fmt.Errorf("can't create user. Err: %w", apperrors.ErrUserAlreadyExists),
			code:     http.StatusBadRequest,
			expected: `{"success": false, "error": "conflict", "message": "User already exists with this email"}`,
		},
		{
			name:     "not found",
			err:      apperrors.ErrUserNotFound,
			code:     http.StatusNotFound,
			expected: `{"success": false, "error": "not_found", "message": "User not found"}`,
		},
		{
			name:     "invalid credentials",
			err:      apperrors.ErrPasswordMismatch,
			code:     http.StatusBadRequest,
			expected: `{"success": false, "error": "invalid_credentials", "message": "Invalid credentials, Try Again"}`,
		},
		{
			name:     "unauthenticated",
			err:      fmt.Errorf("%w: %w", apperrors.ErrTokenFailed, apperrors.ErrTokenExpired),
			code:     http.StatusUnauthorized,
			expected: `{"success": false, "error": "unauthenticated", "message": "Not authorized, token failed"}`,
		},
		{
			name:     "forbidden",
			err:      apperrors.ErrRefreshTokenStale,
			code:     http.StatusForbidden,
			expected: `{"success": false, "error": "forbidden", "message": "Invalid refresh token. Please login again."}`,
		},
		{
			name:     "detailed validation",
			err:      &apperrors.DetailedError{Err: apperrors.ErrProductInvalid, Details: []string{"Price cannot be negative", "Product brand is required"}},
			code:     http.StatusBadRequest,
			expected: `{"success": false, "error": "validation_error", "message": "Price cannot be negative, Product brand is required"}`,
		},
		{
			name:     "unknown error is hidden",
			err:      errors.New("db error: connection refused"),
			code:     http.StatusInternalServerError,
			expected: `{"success": false, "error": "internal", "message": "Internal server error"}`,
			logged:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := &errorLogger{}
			rr := httptest.NewRecorder()

			Error(rr, tc.err, l)

			require.Equal(t, tc.code, rr.Code)
			assert.JSONEq(t, tc.expected, rr.Body.String())
			assert.Equal(t, tc.logged, l.calls == 1, "only unexpected errors should be logged")
		})
	}
}

func TestRender_DecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value := struct {
			Key   string `json:"key"`
			Stock int    `json:"stock"`
		}{}

		err := json.NewDecoder(r.Body).Decode(&value)
		require.Error(t, err, "Please check what JSON was sent. Test expected that it is invalid")
		DecodeError(w, err)
	}))
	defer ts.Close()

	tests := []struct {
		name        string
		requestBody string
		expected    string
	}{
		{
			name:        "json parsing error",
			requestBody: `invalid-json`,
			expected: `{
				"success": false,
				"error":"decoding_failed",
				"message": "Failed to parse JSON: invalid character 'i' looking for beginning of value"
			}`,
		},
		{
			name:        "invalid type ok",
			requestBody: `{"key": "valid_json", "stock": "but incorrect type"}`,
			expected: `{
				"success": false,
				"error": "decoding_failed",
				"message": "Invalid data type for field 'stock'"
			}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/test", "application/json", strings.NewReader(tc.requestBody))
			require.NoError(t, err)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck

			assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
			assert.JSONEq(t, tc.expected, string(body))
		})
	}
}

func TestRender_ValidationErrors(t *testing.T) {
	type T struct {
		Name     string `json:"name" validate:"required"`
		Password string `json:"password" validate:"min=6"`
		Email    string `json:"email" validate:"email"`
		Category string `json:"category" validate:"category"`
		Brand    string `json:"brand" validate:"alpha"`
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		invalidData := T{
			Password: "123",
			Email:    "not-valid-email",
			Category: "socks",
			Brand:    "123",
		}

		err := validate.Struct(invalidData)
		require.Error(t, err, "test expects that data not pass validation")
		errs, ok := err.(validator.ValidationErrors)
		require.True(t, ok, "be sure you pass structure to validator")
		ValidationErrors(w, errs)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	expected, err := json.Marshal(ErrorResponse{
		Error:   "validation_failed",
		Message: "Request validation failed",
		Fields: map[string]string{
			"name":     "This field is required",         // Message for 'required' tag
			"password": "Value is too short (minimum 6)", // Message for 'min' validation tag
			"email":    "Invalid email format",
			"category": "Unknown category",
			"brand":    "Invalid value", // Unknown validation tag failed: default validation error message
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, string(expected), string(body))
}

func TestRender_BindAndValidate(t *testing.T) {
	type User struct {
		Username string `json:"username" validate:"required"`
	}

	tests := []struct {
		name           string
		requestBody    string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "valid request",
			requestBody:    `{"username": "john"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success": true}`,
		},
		{
			name:           "invalid json",
			requestBody:    `invalid-json`,
			expectedStatus: http.StatusBadRequest,
			expectedBody: `{
				"success": false,
				"error": "decoding_failed",
				"message": "Failed to parse JSON: invalid character 'i' looking for beginning of value"
			}`,
		},
		{
			name:           "validation failed",
			requestBody:    `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody: `{
				"success": false,
				"error": "validation_failed",
				"message": "Request validation failed",
				"fields": {
					"username": "This field is required"
				}
			}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, err := BindAndValidate[User](w, r)
				if err != nil {
					return // Error response already written
				}
				// Success case
				JSON(w, map[string]bool{"success": true})
			}))
			defer ts.Close()

			resp, err := http.Post(ts.URL+"/test", "application/json", strings.NewReader(tc.requestBody))
			require.NoError(t, err)
			require.Equal(t, tc.expectedStatus, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck

			assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, string(body))
		})
	}
}
