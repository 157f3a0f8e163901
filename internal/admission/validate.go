package admission

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMissingField  = errors.New("admission: missing field")
	ErrEmptyField    = errors.New("admission: empty field")
	ErrInvalidCourse = errors.New("admission: invalid course")
	ErrInvalidYear   = errors.New("admission: invalid start year")
	ErrInvalidMonth  = errors.New("admission: invalid start month")
)

// ValidationError pairs a rejection kind with the human-readable reason that
// travels verbatim as the wire error message. Unwrap exposes the kind for
// errors.Is dispatch.
type ValidationError struct {
	kind    error
	message string
}

func (e *ValidationError) Error() string { return e.message }

func (e *ValidationError) Unwrap() error { return e.kind }

func reject(kind error, format string, args ...any) error {
	return &ValidationError{kind: kind, message: fmt.Sprintf(format, args...)}
}

// requiredFields in validation order; first failure wins.
var requiredFields = []string{
	"name",
	"address",
	"qualifications",
	"course",
	"start_year",
	"start_month",
}

// freeTextFields must arrive as non-empty strings; a null or numeric value
// has no usable text and is rejected up front. Course membership and
// year/month coercion carry their own rules.
var freeTextFields = map[string]bool{
	"name":           true,
	"address":        true,
	"qualifications": true,
}

const (
	MinStartYear = 2020
	MaxStartYear = 2100
)

// Validate maps a raw decoded request envelope to a normalized Application
// or a rejection. It is pure: no storage, no clock, no I/O. Rules apply
// fail-fast in order: presence, non-empty text, course membership, year
// range, month range.
func Validate(fields map[string]any) (Application, error) {
	for _, name := range requiredFields {
		value, ok := fields[name]
		if !ok {
			return Application{}, reject(ErrMissingField, "Missing field: %s", name)
		}
		text, isText := value.(string)
		if isText && strings.TrimSpace(text) == "" {
			return Application{}, reject(ErrEmptyField, "Field '%s' cannot be empty.", name)
		}
		if !isText && freeTextFields[name] {
			return Application{}, reject(ErrEmptyField, "Field '%s' cannot be empty.", name)
		}
	}

	course, _ := fields["course"].(string)
	if !ValidCourse(course) {
		return Application{}, reject(ErrInvalidCourse, "Invalid course selected.")
	}

	year, ok := coerceInt(fields["start_year"])
	if !ok {
		return Application{}, reject(ErrInvalidYear, "Start year must be a number.")
	}
	if year < MinStartYear || year > MaxStartYear {
		return Application{}, reject(ErrInvalidYear, "Invalid start year.")
	}

	month, ok := coerceInt(fields["start_month"])
	if !ok {
		return Application{}, reject(ErrInvalidMonth, "Start month must be a number.")
	}
	if month < 1 || month > 12 {
		return Application{}, reject(ErrInvalidMonth, "Start month must be between 1 and 12.")
	}

	return Application{
		Name:           strings.TrimSpace(textField(fields, "name")),
		Address:        strings.TrimSpace(textField(fields, "address")),
		Qualifications: strings.TrimSpace(textField(fields, "qualifications")),
		Course:         course,
		StartYear:      year,
		StartMonth:     month,
	}, nil
}

func textField(fields map[string]any, name string) string {
	text, _ := fields[name].(string)
	return text
}

// coerceInt accepts the JSON shapes a caller may supply for year/month:
// a numeric string or a JSON number. Fractional numbers are not integers.
func coerceInt(value any) (int, bool) {
	switch v := value.(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	case float64:
		n := int(v)
		if float64(n) != v {
			return 0, false
		}
		return n, true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}
