package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const MaxTaskTextLength = 500

var markupTagPattern = regexp.MustCompile(`<[^>]*>`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("field")
	})
	return v
}

type registration struct {
	Name     string `field:"name" validate:"min=3,max=100"`
	Email    string `field:"email" validate:"required,email,max=255"`
	Password string `field:"password" validate:"min=8,max=128"`
}

// normalizeRegistration trims the name, lowercases the email and checks
// every field. The password is never altered.
func normalizeRegistration(params RegisterParams) (RegisterParams, error) {
	r := registration{
		Name:     strings.TrimSpace(params.Name),
		Email:    normalizeEmail(params.Email),
		Password: params.Password,
	}

	err := validate.Struct(r)
	if err != nil {
		return RegisterParams{}, toValidationError("", err)
	}

	switch {
	case containsNUL(r.Name):
		return RegisterParams{}, newValidationError("name", nulMessage)
	case containsNUL(r.Email):
		return RegisterParams{}, newValidationError("email", nulMessage)
	}

	err = checkPasswordStrength(r.Password)
	if err != nil {
		return RegisterParams{}, err
	}

	return RegisterParams{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkPasswordStrength(password string) error {
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	switch {
	case !hasUpper:
		return newValidationError("password", "must contain at least one uppercase letter")
	case !hasLower:
		return newValidationError("password", "must contain at least one lowercase letter")
	case !hasDigit:
		return newValidationError("password", "must contain at least one number")
	}
	return nil
}

// normalizeTaskText strips markup tags and surrounding whitespace, then
// checks the result is non-empty and short enough.
func normalizeTaskText(raw string) (string, error) {
	text := strings.TrimSpace(markupTagPattern.ReplaceAllString(raw, ""))

	err := validate.Var(text, fmt.Sprintf("required,max=%d", MaxTaskTextLength))
	if err != nil {
		return "", toValidationError("text", err)
	}

	if containsNUL(text) {
		return "", newValidationError("text", nulMessage)
	}
	return text, nil
}

// Postgres text columns cannot store U+0000.
const nulMessage = "must not contain NUL characters"

func containsNUL(s string) bool {
	return strings.ContainsRune(s, 0)
}

// parseTaskID returns the canonical form of a task UUID.
func parseTaskID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", newValidationError("id", "must be a valid UUID")
	}
	return id.String(), nil
}

func toValidationError(field string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return newValidationError(field, err.Error())
	}

	fe := fieldErrs[0]
	if fe.Field() != "" {
		field = fe.Field()
	}

	var message string
	switch fe.Tag() {
	case "required":
		message = "must not be empty"
	case "min":
		message = fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		message = fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		message = "must be a valid email address"
	default:
		message = "is invalid"
	}
	return newValidationError(field, message)
}
