// Package inputval validates form and API input. Struct validation
// runs through go-playground/validator with a `label` tag supplying the
// human-readable field name used in error messages.
package inputval

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError is one validation failure.
type FieldError struct {
	Field   string
	Message string
}

// Result collects validation failures for a struct.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first error message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All returns every error message joined with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Error messages name fields by their label tag.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})

	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("inputval: register %q: %v", tag, err))
		}
	}
	must("httpurl", func(fl validator.FieldLevel) bool {
		return IsValidHTTPURL(fl.Field().String())
	})
	must("objectid", func(fl validator.FieldLevel) bool {
		return IsValidObjectID(fl.Field().String())
	})
	must("slug", func(fl validator.FieldLevel) bool {
		return IsValidSlug(fl.Field().String())
	})
	must("regstatus", func(fl validator.FieldLevel) bool {
		return IsValidRegistrationStatus(fl.Field().String())
	})

	return v
}

// Validate runs struct validation and translates failures into
// user-facing messages.
func Validate(s any) *Result {
	err := validate.Struct(s)
	if err == nil {
		return &Result{}
	}

	result := &Result{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		result.Errors = append(result.Errors, FieldError{Message: "Invalid input."})
		return result
	}
	for _, fe := range verrs {
		result.Errors = append(result.Errors, FieldError{
			Field:   fe.Field(),
			Message: messageFor(fe),
		})
	}
	return result
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", fe.Field(), fe.Param())
	case "email":
		return "A valid email address is required."
	case "httpurl":
		return fe.Field() + " must be a valid http(s) URL."
	case "objectid":
		return fe.Field() + " must be a valid ID."
	case "slug":
		return fe.Field() + " must contain only lowercase letters, digits, and hyphens."
	case "regstatus":
		return fe.Field() + " must be upcoming, open, or closed."
	default:
		return fe.Field() + " is invalid."
	}
}

// IsValidEmail reports whether the input is a bare RFC 5322 address.
// Display-name forms ("Name <a@b>") are rejected.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}

// IsValidHTTPURL reports whether the input is an absolute http or
// https URL.
func IsValidHTTPURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidObjectID reports whether the input is a 24-character hex
// MongoDB ObjectID.
func IsValidObjectID(id string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	return err == nil
}

var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// IsValidSlug reports whether the input is a URL-safe event slug:
// lowercase letters, digits, and single interior hyphens.
func IsValidSlug(slug string) bool {
	return slugRe.MatchString(strings.TrimSpace(slug))
}

// IsValidRegistrationStatus reports whether the input is one of the
// registration states.
func IsValidRegistrationStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case models.RegistrationUpcoming, models.RegistrationOpen, models.RegistrationClosed:
		return true
	default:
		return false
	}
}
