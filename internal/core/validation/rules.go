// Package validation holds the shared input predicates for account payloads.
//
// Checks run in a fixed order and stop at the first violation: required
// fields, then email shape, then password length, then role.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/siriphobmean/next-crud/internal/core/domain"
)

const (
	MinPasswordLength = 6

	tagEmailShape = "emailshape"
	tagRole       = "oneof=user admin moderator"
)

// Simple shape check, not RFC 5322: local@domain with a dot in the domain.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Rules validates account inputs. Safe for concurrent use.
type Rules struct {
	v *validator.Validate
}

// New returns Rules with the custom tags registered.
func New() *Rules {
	v := validator.New()
	_ = v.RegisterValidation(tagEmailShape, func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return &Rules{v: v}
}

type check struct {
	field string
	value string
	tag   string
}

// Registration validates a sign-up payload. Name and email are expected to be
// trimmed already.
func (r *Rules) Registration(name, email, password string) error {
	return r.run([]check{
		{"name", name, "required"},
		{"email", email, "required"},
		{"password", password, "required"},
		{"email", email, tagEmailShape},
		{"password", password, minTag()},
	})
}

// Creation validates an administrative create. An empty role is allowed and
// defaults later.
func (r *Rules) Creation(name, email, password, role string) error {
	checks := []check{
		{"name", name, "required"},
		{"email", email, "required"},
		{"password", password, "required"},
		{"email", email, tagEmailShape},
		{"password", password, minTag()},
	}
	if role != "" {
		checks = append(checks, check{"role", role, tagRole})
	}
	return r.run(checks)
}

// Update validates only the supplied fields. An empty password means "keep the
// current one" and is not checked.
func (r *Rules) Update(name, email, role, password domain.Optional[string]) error {
	var required, shape, length, roles []check
	if v, ok := name.Get(); ok {
		required = append(required, check{"name", v, "required"})
	}
	if v, ok := email.Get(); ok {
		required = append(required, check{"email", v, "required"})
		shape = append(shape, check{"email", v, tagEmailShape})
	}
	if v, ok := password.Get(); ok && v != "" {
		length = append(length, check{"password", v, minTag()})
	}
	if v, ok := role.Get(); ok {
		roles = append(roles, check{"role", v, tagRole})
	}

	checks := append(required, shape...)
	checks = append(checks, length...)
	checks = append(checks, roles...)
	return r.run(checks)
}

func (r *Rules) run(checks []check) error {
	for _, c := range checks {
		if err := r.v.Var(c.value, c.tag); err != nil {
			return domain.NewValidationError(c.field, message(c.field, c.tag))
		}
	}
	return nil
}

func minTag() string {
	return fmt.Sprintf("min=%d", MinPasswordLength)
}

// message renders the user-facing text for a failed check.
func message(field, tag string) string {
	switch {
	case tag == "required":
		return capitalize(field) + " is required"
	case tag == tagEmailShape:
		return "Please enter a valid email"
	case strings.HasPrefix(tag, "min="):
		return fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
	case strings.HasPrefix(tag, "oneof="):
		return "Role must be one of: user, admin, moderator"
	default:
		return capitalize(field) + " is invalid"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
