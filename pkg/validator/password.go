package validator

import (
	"fmt"
	"strings"
	"unicode"
)

// PasswordPolicy controls StrongPassword.
type PasswordPolicy struct {
	MinLength      int
	MaxLength      int
	MinCharClasses int // of upper, lower, digit, special
}

// DefaultPasswordPolicy requires 8-72 bytes and three character classes.
// 72 is the bcrypt input limit.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:      8,
		MaxLength:      72,
		MinCharClasses: 3,
	}
}

func StrongPassword(field, value string, policy PasswordPolicy) Rule {
	return Rule{
		Check: func() bool {
			if len(value) < policy.MinLength || (policy.MaxLength > 0 && len(value) > policy.MaxLength) {
				return false
			}
			return charClasses(value) >= policy.MinCharClasses
		},
		Error: ValidationError{
			Field: field,
			Code:  "password_strength",
			Message: fmt.Sprintf(
				"password must be %d-%d characters and mix at least %d of: upper case, lower case, digits, symbols",
				policy.MinLength, policy.MaxLength, policy.MinCharClasses,
			),
		},
	}
}

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "passw0rd": {}, "p@ssw0rd": {},
	"123456": {}, "12345678": {}, "123456789": {}, "1234567890": {}, "qwerty": {},
	"qwerty123": {}, "qwertyuiop": {}, "letmein": {}, "welcome": {}, "welcome1": {},
	"admin": {}, "admin123": {}, "iloveyou": {}, "monkey": {}, "dragon": {},
	"football": {}, "baseball": {}, "abc123": {}, "111111": {}, "sunshine": {},
	"princess": {}, "trustno1": {}, "changeme": {}, "secret": {}, "master": {},
}

// NotCommonPassword rejects passwords from a short list of the most
// frequently leaked ones, compared case-insensitively.
func NotCommonPassword(field, value string) Rule {
	return Rule{
		Check: func() bool {
			_, found := commonPasswords[strings.ToLower(value)]
			return !found
		},
		Error: ValidationError{Field: field, Code: "password_common", Message: "password is too common, please choose a different one"},
	}
}

func charClasses(s string) int {
	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	n := 0
	for _, ok := range []bool{upper, lower, digit, special} {
		if ok {
			n++
		}
	}
	return n
}
