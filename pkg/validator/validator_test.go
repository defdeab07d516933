package validator_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accountkit/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("all pass", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Required("name", "bob"),
			validator.ValidEmail("email", "bob@example.com"),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failure", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Required("name", "  "),
			validator.ValidEmail("email", "nope"),
			validator.MaxLen("bio", "ok", 10),
		)
		require.Error(t, err)
		assert.True(t, validator.IsValidationError(err))

		ve := validator.ExtractValidationErrors(fmt.Errorf("wrapped: %w", err))
		require.Len(t, ve, 2)
		assert.True(t, ve.Has("name"))
		assert.True(t, ve.Has("email"))
		assert.False(t, ve.Has("bio"))
		assert.Contains(t, ve.Error(), "email: must be a valid email address")
		assert.Equal(t, []string{"field is required"}, ve.Fields()["name"])
	})

	t.Run("optional skips blanks", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validator.Apply(validator.Optional("", validator.ValidPhone("phone", ""))))
		assert.Error(t, validator.Apply(validator.Optional("abc", validator.ValidPhone("phone", "abc"))))
	})

	t.Run("non validation errors", func(t *testing.T) {
		t.Parallel()
		assert.False(t, validator.IsValidationError(fmt.Errorf("boom")))
		assert.Nil(t, validator.ExtractValidationErrors(nil))
	})
}

func TestValidEmail(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"bob@example.com":           true,
		"first.last+tag@sub.dom.io": true,
		"":                          false,
		"bob":                       false,
		"bob@localhost":             false,
		"bob@.example.com":          false,
		"bob@example..com":          false,
		"Bob <bob@example.com>":     false,
		"@example.com":              false,
	}
	for in, ok := range tests {
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, ok, validator.ValidEmail("email", in).Check())
		})
	}
}

func TestFormatRules(t *testing.T) {
	t.Parallel()

	assert.True(t, validator.ValidURL("u", "https://cdn.example.com/a.png").Check())
	assert.False(t, validator.ValidURL("u", "ftp://example.com/a.png").Check())
	assert.False(t, validator.ValidURL("u", "/relative").Check())

	assert.True(t, validator.ValidPhone("p", "+1 (555) 123-4567").Check())
	assert.False(t, validator.ValidPhone("p", "12").Check())
	assert.False(t, validator.ValidPhone("p", "phone").Check())

	assert.True(t, validator.OneOf("v", "public", "public", "private").Check())
	assert.False(t, validator.OneOf("v", "friends", "public", "private").Check())

	assert.True(t, validator.MaxLen("n", strings.Repeat("é", 5), 5).Check())
	assert.False(t, validator.MaxLen("n", "toolong", 5).Check())
}

func TestPasswordRules(t *testing.T) {
	t.Parallel()
	policy := validator.DefaultPasswordPolicy()

	tests := []struct {
		password string
		strong   bool
	}{
		{"Sup3rSecret", true},
		{"correct-horse-9", true},
		{"short1A", false},
		{"alllowercase", false},
		{"ALLUPPER123", true},
		{strings.Repeat("Aa1", 25), false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.strong, validator.StrongPassword("password", tt.password, policy).Check())
		})
	}

	assert.False(t, validator.NotCommonPassword("password", "Password123").Check())
	assert.True(t, validator.NotCommonPassword("password", "Sup3rSecret").Check())
}
