// internal/app/system/inputval/validators.go
package inputval

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

// Result collects the failures from Validate in field order.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "" when valid.
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the string fields of struct v against their `validate`
// tags. Supported rules: required, min=N, max=N, email, httpurl, objectid.
// The `label` tag names the field in messages; the Go field name is used
// when it is absent. Only the first failing rule per field is reported.
func Validate(v any) *Result {
	res := &Result{}
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return res
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag := f.Tag.Get("validate")
		if tag == "" || f.Type.Kind() != reflect.String {
			continue
		}
		label := f.Tag.Get("label")
		if label == "" {
			label = f.Name
		}
		if fe, failed := check(f.Name, label, rv.Field(i).String(), tag); failed {
			res.Errors = append(res.Errors, fe)
		}
	}
	return res
}

func check(field, label, value, tag string) (FieldError, bool) {
	trimmed := strings.TrimSpace(value)
	for _, rule := range strings.Split(tag, ",") {
		name, arg, _ := strings.Cut(strings.TrimSpace(rule), "=")
		fail := func(msg string) (FieldError, bool) {
			return FieldError{Field: field, Rule: name, Message: msg}, true
		}
		if name != "required" && trimmed == "" {
			continue
		}
		switch name {
		case "required":
			if trimmed == "" {
				return fail(label + " is required.")
			}
		case "min":
			n, _ := strconv.Atoi(arg)
			if utf8.RuneCountInString(trimmed) < n {
				return fail(fmt.Sprintf("%s must be at least %d characters.", label, n))
			}
		case "max":
			n, _ := strconv.Atoi(arg)
			if utf8.RuneCountInString(trimmed) > n {
				return fail(fmt.Sprintf("%s must be at most %d characters.", label, n))
			}
		case "email":
			if !IsValidEmail(trimmed) {
				return fail("A valid email address is required.")
			}
		case "httpurl":
			if !IsValidHTTPURL(trimmed) {
				return fail(label + " must be an absolute http or https URL.")
			}
		case "objectid":
			if !IsValidObjectID(trimmed) {
				return fail(label + " is not a valid id.")
			}
		}
	}
	return FieldError{}, false
}
