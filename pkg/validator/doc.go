// Package validator offers composable, allocation-light validation rules.
//
// A Rule couples a deferred check with the ValidationError reported when the
// check fails. Apply runs every rule and returns all failures at once as
// ValidationErrors, so clients get a complete list of problems in a single
// round trip:
//
//	err := validator.Apply(
//	    validator.ValidEmail("email", in.Email),
//	    validator.StrongPassword("password", in.Password, validator.DefaultPasswordPolicy()),
//	    validator.Optional(in.Phone, validator.ValidPhone("phone", in.Phone)),
//	)
//	if validator.IsValidationError(err) { ... }
package validator
