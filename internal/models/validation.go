package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// ValidationError indicates request validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// fieldMessages holds the client-facing reason for each field/rule pair
var fieldMessages = map[string]string{
	"JobDescription.trimmed_min": "Job description must be at least 50 characters long",
	"Document.required":          "No file uploaded",
	"SessionID.required":         "Invalid session ID",
	"Answer.trimmed_min":         "Answer must be at least 5 characters long",
	"Questions.required_without": "Invalid request format",
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Registration only fails for empty tags or nil funcs
		_ = validate.RegisterValidation("trimmed_min", trimmedMin)
	})
	return validate
}

// trimmedMin checks the rune length of a string after trimming whitespace
func trimmedMin(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
}

// Validate checks a request struct and returns the first failure as a
// *ValidationError
func Validate(req any) error {
	err := validatorInstance().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "request", Message: "Invalid request format"}
	}

	fe := fieldErrs[0]
	msg, ok := fieldMessages[fe.StructField()+"."+fe.Tag()]
	if !ok {
		msg = fmt.Sprintf("%s is invalid", fe.Field())
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}
