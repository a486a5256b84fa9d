package validate

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Collect keeps the non-nil field errors. It returns nil when every check
// passed so the result can be returned as an error directly.
func Collect(checks ...*ErrField) error {
	var out Errs
	for _, c := range checks {
		if c != nil {
			out = append(out, *c)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

// MinLen skips empty values; pair it with Required when the field is mandatory.
func MinLen(field, value string, n int) *ErrField {
	v := strings.TrimSpace(value)
	if v != "" && utf8.RuneCountInString(v) < n {
		return &ErrField{Field: field, Msg: "must be at least " + strconv.Itoa(n) + " characters"}
	}
	return nil
}

func Email(field, value string) *ErrField {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	at := strings.IndexByte(v, '@')
	if at <= 0 || at == len(v)-1 || strings.ContainsAny(v, " \t") || strings.Count(v, "@") != 1 {
		return &ErrField{Field: field, Msg: "invalid email"}
	}
	return nil
}
