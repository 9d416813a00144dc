package render

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tanoush/storefront/internal/models"
)

func configureValidator(validate *validator.Validate) {
	_ = validate.RegisterValidation("category", validateCategory)
	_ = validate.RegisterValidation("maxbytes", validateMaxBytes)
	validate.RegisterTagNameFunc(useJSONTagNames)
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

// Category is compared case insensitive, it is lowered before storing
func validateCategory(fl validator.FieldLevel) bool {
	return models.IsCategory(fl.Field().String())
}

// Like max but counts bytes, e.g. bcrypt input is limited to 72 bytes
func validateMaxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}
