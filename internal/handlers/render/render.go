package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/tanoush/storefront/internal/apperrors"
)

const (
	ValidationErrorType = "validation_failed"
	DecodingErrorType   = "decoding_failed"
	ServiceErrorType    = "service_error"
)

var validate = validator.New()

func init() {
	configureValidator(validate)

	// Prices are rendered as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type Struct any

type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type logger interface {
	Error(msg string, args ...any)
}

func JSON(w http.ResponseWriter, data any) {
	jsonWithStatus(w, data, http.StatusOK)
}

func Created(w http.ResponseWriter, data any) {
	jsonWithStatus(w, data, http.StatusCreated)
}

// Render ServiceError
func ServiceError(w http.ResponseWriter, error string, code int) {
	response := ErrorResponse{
		Error:   ServiceErrorType,
		Message: error,
	}

	jsonWithStatus(w, response, code)
}

// Messages for errors the client is allowed to see
var messages = []struct {
	err     error
	message string
}{
	{apperrors.ErrUserAlreadyExists, "User already exists with this email"},
	{apperrors.ErrUserNotFound, "User not found"},
	{apperrors.ErrPasswordMismatch, "Invalid credentials, Try Again"},
	{apperrors.ErrPasswordTooLong, "Password is too long (maximum 72 bytes)"},
	{apperrors.ErrNoToken, "Not authorized, no token provided"},
	{apperrors.ErrTokenFailed, "Not authorized, token failed"},
	{apperrors.ErrIdentityNotFound, "User not found"},
	{apperrors.ErrRefreshTokenMissing, "No refresh token provided"},
	{apperrors.ErrRefreshTokenRejected, "Invalid or expired refresh token"},
	{apperrors.ErrRefreshTokenStale, "Invalid refresh token. Please login again."},
	{apperrors.ErrAdminRequired, "Access denied. Admin privileges required."},
	{apperrors.ErrSelfDelete, "You can't delete your own account"},
	{apperrors.ErrProductNotFound, "Product not found"},
	{apperrors.ErrWishlistItemExists, "Product already in wishlist"},
	{apperrors.ErrWishlistItemNotFound, "Product not found in wishlist"},
	{apperrors.ErrUploadMissing, "No image file provided"},
	{apperrors.ErrUploadTooLarge, "File is too large. Maximum size is 10MB"},
	{apperrors.ErrUploadNotImage, "Only image files are allowed!"},
}

var kinds = []struct {
	err  error
	name string
	code int
}{
	{apperrors.ErrValidation, "validation_error", http.StatusBadRequest},
	{apperrors.ErrConflict, "conflict", http.StatusBadRequest},
	{apperrors.ErrNotFound, "not_found", http.StatusNotFound},
	{apperrors.ErrInvalidCredentials, "invalid_credentials", http.StatusBadRequest},
	{apperrors.ErrUnauthenticated, "unauthenticated", http.StatusUnauthorized},
	{apperrors.ErrForbidden, "forbidden", http.StatusForbidden},
}

// Error maps service error to response
// Errors of unknown kind are logged and never shown to the client
func Error(w http.ResponseWriter, err error, l logger) {
	response := ErrorResponse{Error: "internal", Message: "Internal server error"}
	code := http.StatusInternalServerError

	for _, k := range kinds {
		if errors.Is(err, k.err) {
			response.Error, code = k.name, k.code
			response.Message = kindMessage(err)
			break
		}
	}

	if code == http.StatusInternalServerError && l != nil {
		l.Error("request failed", "error", err)
	}

	jsonWithStatus(w, response, code)
}

func kindMessage(err error) string {
	var detailed *apperrors.DetailedError
	if errors.As(err, &detailed) {
		return strings.Join(detailed.Details, ", ")
	}

	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.message
		}
	}
	return http.StatusText(http.StatusBadRequest)
}

// Render json DecodeError
func DecodeError(w http.ResponseWriter, err error) {
	response := ErrorResponse{
		Error:   DecodingErrorType,
		Message: "",
	}

	// Try to provide more specific error message based on error type
	switch err := err.(type) {
	case *json.UnmarshalTypeError:
		response.Message = fmt.Sprintf("Invalid data type for field '%s'", err.Field)
	default:
		response.Message = fmt.Sprintf("Failed to parse JSON: %s", err.Error())
	}

	jsonWithStatus(w, response, http.StatusBadRequest)
}

// Render ValidationErrors
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	response := ErrorResponse{
		Error:   ValidationErrorType,
		Message: "Request validation failed",
		Fields:  make(map[string]string, len(errs)),
	}

	// Create user-friendly error messages based on validation tag
	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			message = "This field is required"
		case "email":
			message = "Invalid email format"
		case "min":
			message = fmt.Sprintf("Value is too short (minimum %s)", fieldError.Param())
		case "max":
			message = fmt.Sprintf("Value is too long (maximum %s)", fieldError.Param())
		case "maxbytes":
			message = fmt.Sprintf("Value is too long (maximum %s bytes)", fieldError.Param())
		case "gte":
			message = fmt.Sprintf("Value must be at least %s", fieldError.Param())
		case "category":
			message = "Unknown category"
		default:
			message = "Invalid value"
		}

		response.Fields[fieldError.Field()] = message
	}

	jsonWithStatus(w, response, http.StatusBadRequest)
}

// BindAndValidate decodes JSON request body into type T and validates it using struct tags.
// Returns the decoded value and writes appropriate error responses for decoding or validation failures.
func BindAndValidate[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		DecodeError(w, err)
		return value, err
	}

	err = validate.Struct(value)
	if err != nil {
		// pretty sure cast will be ok cause expecting T is valid struct
		errs := err.(validator.ValidationErrors)
		ValidationErrors(w, errs)
		return value, err
	}

	return value, nil
}

// renderJSONWithStatus sends data as json and enforces status code
func jsonWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
