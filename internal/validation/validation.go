package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const TaskTitleMax = 100

var validate = validator.New(validator.WithRequiredStructEnabled())

// Result mirrors what form handlers render back to the visitor.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

type Contact struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Normalize trims every field in place.
func (c *Contact) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Subject = strings.TrimSpace(c.Subject)
	c.Message = strings.TrimSpace(c.Message)
}

func ValidateContact(contact Contact) Result {
	contact.Normalize()
	err := validate.Struct(contact)
	if err == nil {
		return Result{Valid: true}
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return Result{Errors: []string{err.Error()}}
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		messages = append(messages, contactMessage(fieldError))
	}
	return Result{Errors: messages}
}

func contactMessage(fieldError validator.FieldError) string {
	field := fieldError.Field()
	switch fieldError.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Please enter a valid email address"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fieldError.Param())
	default:
		return field + " is invalid"
	}
}

// ValidateTaskTitle accepts non-blank titles of at most TaskTitleMax characters.
func ValidateTaskTitle(title string) Result {
	title = strings.TrimSpace(title)
	if title == "" {
		return Result{Errors: []string{"Task title is required"}}
	}
	if utf8.RuneCountInString(title) > TaskTitleMax {
		return Result{Errors: []string{fmt.Sprintf("Task title must be less than %d characters", TaskTitleMax)}}
	}
	return Result{Valid: true}
}
