package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Azahorscak/nyxflare/internal/api"
)

// ValidationError is a field-scoped form error. It never leaves the form.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("record_type", func(fl validator.FieldLevel) bool {
		return api.IsSupportedType(fl.Field().String())
	})
	_ = v.RegisterValidation("ttl", func(fl validator.FieldLevel) bool {
		_, err := parseTTL(fl.Field().String())
		return err == nil
	})
	v.RegisterStructValidation(recordRules, recordFields{})
	return v
}

// recordFields is the raw text of the record form.
type recordFields struct {
	Name    string `validate:"required"`
	Type    string `validate:"required,record_type"`
	Content string `validate:"required"`
	TTL     string `validate:"required,ttl"`
	Proxied bool
}

// accountFields is the raw text of the add-account form.
type accountFields struct {
	Name      string `validate:"required"`
	APIToken  string `validate:"required"`
	Email     string `validate:"omitempty,email"`
	AccountID string
}

// recordRules holds the checks that span fields.
func recordRules(sl validator.StructLevel) {
	f := sl.Current().Interface().(recordFields)
	if !api.IsSupportedType(f.Type) {
		return
	}
	if f.Proxied && !api.IsProxyEligible(f.Type) {
		sl.ReportError(f.Proxied, "Proxied", "Proxied", "proxy_eligible", "")
	}
	if msg := implausibleContent(f.Type, f.Content); msg != "" {
		sl.ReportError(f.Content, "Content", "Content", "plausible", msg)
	}
}

// implausibleContent returns why content cannot be right for typ, or "".
// The remote side does the authoritative checks.
func implausibleContent(typ, content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	switch strings.ToUpper(strings.TrimSpace(typ)) {
	case "A":
		if strings.Contains(content, ":") {
			return "looks like an IPv6 address; use AAAA"
		}
	case "AAAA":
		if !strings.Contains(content, ":") {
			return "must be an IPv6 address"
		}
	case "CNAME", "NS", "MX", "PTR":
		if strings.ContainsAny(content, " \t") {
			return "hostname must not contain spaces"
		}
	}
	return ""
}

// parseTTL accepts a positive integer or "automatic"/"auto".
func parseTTL(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "automatic" || s == "auto" {
		return api.TTLAuto, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid ttl %q", s)
	}
	return n, nil
}

// fieldErrors runs v over fields and returns the first message per struct
// field name.
func fieldErrors(fields any) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(validate.Struct(fields), &verrs) {
		return out
	}
	for _, fe := range verrs {
		if _, seen := out[fe.StructField()]; seen {
			continue
		}
		out[fe.StructField()] = errorMessage(fe)
	}
	return out
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "record_type":
		return "unsupported type; one of " + strings.Join(api.RecordTypes, ", ")
	case "ttl":
		return `must be a positive number or "automatic"`
	case "proxy_eligible":
		return "only A, AAAA and CNAME records can be proxied"
	case "email":
		return "not a valid email address"
	case "plausible":
		return fe.Param()
	}
	return fmt.Sprintf("failed %s check", fe.Tag())
}
