// internal/form/submit.go
//
// Forms subsystem: consolidated Submit helper.
//
// Context
//   Most handlers want one call that parses the POST body, validates input,
//   and returns the clean map or a validation error.  HandleSubmit provides
//   that so component code stays terse.  Service-level rejections (a taken
//   slug, a wrong password) use Invalid so they re-render the same way.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"net/http"
)

// validationError wraps []ErrorField and satisfies the error interface, so
// callers can tell user input errors from system failures.
type validationError struct{ Fields []ErrorField }

func (ve validationError) Error() string { return "form validation failed" }

// HandleSubmit parses r and validates it against formID.
func HandleSubmit(formID string, r *http.Request) (map[string]any, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	clean, errs := ValidateForm(formID, r.PostForm)
	if len(errs) > 0 {
		return nil, validationError{Fields: errs}
	}
	return clean, nil
}

// Invalid builds a validation error for one field.  Use an empty name for a
// form-level message.
func Invalid(name, message string) error {
	return validationError{Fields: []ErrorField{{Name: name, Message: message}}}
}

// IsValidationError reports whether err came from failed validation.
func IsValidationError(err error) bool {
	var ve validationError
	return errors.As(err, &ve)
}

// FieldErrors returns the field errors carried by err, or nil.
func FieldErrors(err error) []ErrorField {
	var ve validationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// Prefill converts posted values into renderer pre-fill, dropping
// passwords and the token.
func Prefill(r *http.Request) map[string]string {
	out := make(map[string]string, len(r.PostForm))
	for k, vs := range r.PostForm {
		if k == "csrf_token" || k == "password" || k == "pin" || len(vs) == 0 {
			continue
		}
		out[k] = vs[0]
	}
	return out
}
