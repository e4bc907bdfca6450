package service

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/academic-records/internal/models"
	appErrors "github.com/noah-isme/academic-records/pkg/errors"
)

var (
	personNamePattern  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	rollNumberPattern  = regexp.MustCompile(`^[A-Z]{2}\d{4}[A-Z]{2}\d{3}$`)
	emailPattern       = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	subjectCodePattern = regexp.MustCompile(`^[A-Z0-9]+$`)
)

// registerRecordValidations installs the custom tags used by the record
// request payloads. Registering twice simply replaces the functions.
func registerRecordValidations(v *validator.Validate) {
	v.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		return personNamePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("roll_number", func(fl validator.FieldLevel) bool {
		return rollNumberPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("record_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("pk_phone", func(fl validator.FieldLevel) bool {
		return ValidPhoneNumber(fl.Field().String())
	})
	v.RegisterValidation("subject_code", func(fl validator.FieldLevel) bool {
		return subjectCodePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return models.Department(fl.Field().String()).Valid()
	})
	v.RegisterValidation("academic_year", func(fl validator.FieldLevel) bool {
		return models.AcademicYear(fl.Field().String()).Valid()
	})
	v.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
		return models.Grade(fl.Field().String()).Valid()
	})
}

// NewRecordValidator returns a validator with every record tag registered.
func NewRecordValidator() *validator.Validate {
	v := validator.New()
	registerRecordValidations(v)
	return v
}

// FormatRollNumber uppercases the input and strips everything that is not a
// letter or digit. Inputs longer than a full roll number are cut to 11
// characters.
func FormatRollNumber(value string) string {
	cleaned := strings.Map(func(r rune) rune {
		r = unicode.ToUpper(r)
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, value)
	if len(cleaned) > 11 {
		cleaned = cleaned[:11]
	}
	return cleaned
}

// ValidPhoneNumber accepts Pakistani mobile numbers in local (03XXXXXXXXX),
// short (3XXXXXXXXX) or international (92XXXXXXXXXX) form, ignoring any
// separators.
func ValidPhoneNumber(value string) bool {
	digits := digitsOnly(value)
	switch {
	case strings.HasPrefix(digits, "03") && len(digits) == 11:
		return true
	case strings.HasPrefix(digits, "3") && len(digits) == 10:
		return true
	case strings.HasPrefix(digits, "92") && len(digits) == 12:
		return true
	}
	return false
}

// FormatPhoneNumber renders a phone number in its display layout:
// +92-XXX-XXXXXXX, 03XX-XXXXXXX, 3XX-XXXXXXX or XXX-XXX-XXXX. Partial input is
// grouped as far as it goes.
func FormatPhoneNumber(value string) string {
	d := digitsOnly(value)
	n := len(d)
	switch {
	case strings.HasPrefix(d, "92"):
		switch {
		case n <= 5:
			return "+" + d
		case n <= 8:
			return "+" + d[:2] + "-" + d[2:5] + "-" + d[5:]
		default:
			return "+" + d[:2] + "-" + d[2:5] + "-" + d[5:min(n, 12)]
		}
	case strings.HasPrefix(d, "03"):
		switch {
		case n <= 4:
			return d
		case n <= 8:
			return d[:4] + "-" + d[4:]
		default:
			return d[:4] + "-" + d[4:min(n, 11)]
		}
	case strings.HasPrefix(d, "3"):
		switch {
		case n <= 3:
			return d
		case n <= 7:
			return d[:3] + "-" + d[3:]
		default:
			return d[:3] + "-" + d[3:min(n, 10)]
		}
	default:
		switch {
		case n <= 3:
			return d
		case n <= 6:
			return d[:3] + "-" + d[3:]
		default:
			return d[:3] + "-" + d[3:6] + "-" + d[6:min(n, 10)]
		}
	}
}

// NormalizeSubjectCode trims and uppercases a subject code.
func NormalizeSubjectCode(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

func digitsOnly(value string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
}

// validationError converts validator output into a VALIDATION_ERROR naming the
// offending fields.
func validationError(err error, message string) error {
	var (
		fieldErrs validator.ValidationErrors
		fields    []string
	)
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fields = make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fe.Field())
		}
		message = message + ": " + strings.Join(fields, ", ")
	}
	return appErrors.Invalid(err, message, fields...)
}

// storeError passes typed store errors through and wraps anything else as an
// internal failure.
func storeError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Internal(err, message)
}
