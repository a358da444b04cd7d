// Package validate wraps go-playground/validator with the field naming and
// messages the JSON API returns.
package validate

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/apperr"
)

type FieldErrors map[string]string

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = val.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, ok := ParseISODate(fl.Field().String())
		return ok
	})
	return val
}

// ParseISODate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseISODate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Struct validates dst and returns an apperr.Invalid carrying per-field
// messages, or nil.
func Struct(dst any) error {
	err := v.Struct(dst)
	if err == nil {
		return nil
	}
	return apperr.InvalidErr("invalid input", FromError(err))
}

// Fields validates dst and returns its field errors, or nil.
func Fields(dst any) FieldErrors {
	if err := v.Struct(dst); err != nil {
		return FromError(err)
	}
	return nil
}

func FromError(err error) FieldErrors {
	out := FieldErrors{}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Field()] = messageForTag(fe.Tag(), fe.Param())
		}
		return out
	}
	out["_"] = "invalid input"
	return out
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "oneof":
		return "must be one of: " + param
	case "isodate":
		return "must be an ISO-8601 date"
	default:
		return "is invalid"
	}
}
