// Package bind decodes and validates JSON request bodies.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"task_backend/internal/platform/apperr"
)

var (
	// ErrInvalidJSON is returned for malformed bodies and bodies with trailing data.
	ErrInvalidJSON = apperr.Validation("invalid JSON body")

	// ErrBodyTooLarge is returned when the body exceeds the configured cap.
	ErrBodyTooLarge = apperr.New(apperr.KindTooLarge, "request body too large")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	// エラーメッセージにはJSONのフィールド名を使う
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// JSON decodes the request body into dst and validates its binding tags.
// Unknown fields, malformed JSON and trailing data are rejected.
// An empty body decodes as an empty object so field rules report what is missing.
func JSON(c *gin.Context, dst any) error {
	if c.Request.Body != nil {
		dec := json.NewDecoder(c.Request.Body)
		dec.DisallowUnknownFields()

		if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return decodeError(err)
		}
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return ErrBodyTooLarge
			}
			return ErrInvalidJSON
		}
	}
	return Struct(dst)
}

// Struct validates the binding tags of v.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.Validation(message(verrs[0]))
	}
	return err
}

func decodeError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrBodyTooLarge
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.Validation(fmt.Sprintf("%s has an invalid type", typeErr.Field))
	}

	// encoding/json has no typed error for unknown fields
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return apperr.Validation(fmt.Sprintf("unknown field %s", field))
	}
	return ErrInvalidJSON
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "email":
		return "invalid email format"
	default:
		return field + " is invalid"
	}
}
