// Package validator provides composable validation rules returning
// field-level errors.
//
// Rules are plain values combining a check with the error to report when the
// check fails. Apply runs a list of rules and returns a ValidationErrors
// collecting every failure, so callers can surface all problems at once
// instead of stopping at the first one.
//
// # Usage
//
//	if err := validator.Apply(
//	    validator.ValidEmail("email", email),
//	    validator.StrongPassword("password", password, validator.DefaultPasswordStrength()),
//	); err != nil {
//	    var verrs validator.ValidationErrors
//	    if errors.As(err, &verrs) {
//	        // verrs.Get("email"), verrs.Get("password")
//	    }
//	}
//
// Validation errors are deliberately distinct from authentication errors:
// they describe what is wrong with the input and may be shown to the user.
package validator
