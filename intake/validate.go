// Package intake validates project briefs and dispatches the emails they
// trigger.
package intake

import (
	"agencysite/models"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidEmail  = errors.New("invalid email format")
	ErrInvalidBody   = errors.New("invalid request body")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

// ValidationError lists the fields that failed and wraps one of the
// sentinel errors above.
type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// IsEmail reports whether s has the local@domain.tld shape.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Normalize trims every string field, collapses whitespace runs (line breaks
// included) in single-line fields, lower-cases the email and drops blank
// service codes. The input is not modified.
func Normalize(sub models.ProjectBriefSubmission) models.ProjectBriefSubmission {
	out := models.ProjectBriefSubmission{
		Name:                 singleLine(sub.Name),
		Email:                strings.ToLower(singleLine(sub.Email)),
		Company:              singleLine(sub.Company),
		Phone:                singleLine(sub.Phone),
		ProjectGoals:         strings.TrimSpace(sub.ProjectGoals),
		TargetAudience:       strings.TrimSpace(sub.TargetAudience),
		LaunchDate:           singleLine(sub.LaunchDate),
		BudgetRange:          singleLine(sub.BudgetRange),
		ExistingWebsite:      singleLine(sub.ExistingWebsite),
		HostingPreference:    singleLine(sub.HostingPreference),
		RequiredIntegrations: strings.TrimSpace(sub.RequiredIntegrations),
	}

	for _, svc := range sub.Services {
		svc = strings.TrimSpace(svc)
		if svc != "" && !out.HasService(svc) {
			out.Services = append(out.Services, svc)
		}
	}

	return out
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Validate checks a normalized submission. Missing fields are reported
// before the email shape.
func Validate(sub models.ProjectBriefSubmission) error {
	if err := validate.Struct(sub); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("failed to validate submission: %w", err)
		}

		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fe.Field())
		}
		return &ValidationError{Fields: fields, Err: ErrMissingFields}
	}

	if !IsEmail(sub.Email) {
		return &ValidationError{Fields: []string{"email"}, Err: ErrInvalidEmail}
	}

	return nil
}
