package common

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var cnMobilePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterValidation("cnmobile", func(fl validator.FieldLevel) bool {
			return cnMobilePattern.MatchString(fl.Field().String())
		})
	}
}

// FormatBindingError turns gin binding failures into the per-field messages
// the API reports on 400s.
func FormatBindingError(err error) string {
	if err == nil {
		return ""
	}

	if err == io.EOF {
		return "Request body is empty"
	}

	if syntaxErr, ok := err.(*json.SyntaxError); ok {
		return fmt.Sprintf("Invalid JSON at byte offset %d", syntaxErr.Offset)
	}

	if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
		return fmt.Sprintf("Field '%s' should be of type %s", typeErr.Field, typeErr.Type.String())
	}

	if ve, ok := err.(validator.ValidationErrors); ok {
		var out []string
		for _, fe := range ve {
			out = append(out, formatFieldError(fe))
		}
		return strings.Join(out, ", ")
	}

	return err.Error()
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email", fe.Field())
	case "url":
		return fmt.Sprintf("Field '%s' must be a valid URL", fe.Field())
	case "min":
		return fmt.Sprintf("Field '%s' must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("Field '%s' must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("Field '%s' must be one of %s", fe.Field(), fe.Param())
	case "cnmobile":
		return fmt.Sprintf("Field '%s' must be a valid 11-digit mobile number", fe.Field())
	}
	return fmt.Sprintf("Field '%s' failed validation for '%s'", fe.Field(), fe.Tag())
}
