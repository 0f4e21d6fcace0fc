package validation

import (
	"chat-presence/domain"
	"chat-presence/errors"
	stderrors "errors"
	"fmt"
	"html"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their json name so details match the request body
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

type ParticipantRequest struct {
	Name string `json:"name" validate:"required"`
}

type MessageRequest struct {
	To   string             `json:"to" validate:"required"`
	Text string             `json:"text" validate:"required"`
	Type domain.MessageKind `json:"type" validate:"required,oneof=message private_message"`
}

// Sanitizer strips markup and surrounding whitespace before validation.
type Sanitizer struct {
	policy        *bluemonday.Policy
	maxTextLength int
}

// NewSanitizer builds a Sanitizer. A maxTextLength of zero disables the length check.
func NewSanitizer(maxTextLength int) *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy(), maxTextLength: maxTextLength}
}

// readable undoes the policy's escaping of characters that cannot open a tag.
var readable = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&#34;", "\"")

// Clean decodes entities, removes every tag and trims. Entities are decoded first
// so encoded markup is stripped like literal markup.
func (s *Sanitizer) Clean(value string) string {
	return strings.TrimSpace(readable.Replace(s.policy.Sanitize(html.UnescapeString(value))))
}

func (s *Sanitizer) Participant(req ParticipantRequest) (ParticipantRequest, error) {
	req.Name = s.Clean(req.Name)
	if err := validate.Struct(req); err != nil {
		return req, validationError(err)
	}
	return req, nil
}

func (s *Sanitizer) Message(req MessageRequest) (MessageRequest, error) {
	req.To = s.Clean(req.To)
	req.Text = s.Clean(req.Text)
	req.Type = domain.MessageKind(s.Clean(string(req.Type)))
	if err := validate.Struct(req); err != nil {
		return req, validationError(err)
	}
	if s.maxTextLength > 0 && len([]rune(req.Text)) > s.maxTextLength {
		return req, &Error{details: []string{
			fmt.Sprintf("text must be at most %d characters", s.maxTextLength),
		}}
	}
	return req, nil
}

// Error carries the per-field messages of a rejected request.
type Error struct {
	details []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", errors.ErrValidation, strings.Join(e.details, "; "))
}

func (e *Error) Unwrap() error {
	return errors.ErrValidation
}

func validationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if !stderrors.As(err, &fieldErrors) {
		return fmt.Errorf("%w: %w", errors.ErrValidation, err)
	}
	details := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		details = append(details, fieldMessage(fe))
	}
	return &Error{details: details}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
}

// Details returns the field messages of a validation error, nil for any other error.
func Details(err error) []string {
	var ve *Error
	if stderrors.As(err, &ve) {
		return ve.details
	}
	return nil
}
