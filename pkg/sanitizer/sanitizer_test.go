package sanitizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/accountkit/pkg/sanitizer"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "bob@example.com", sanitizer.NormalizeEmail("  Bob@Example.COM "))
	assert.Equal(t, "", sanitizer.NormalizeEmail("   "))
}

func TestName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"  Ada   Lovelace ":        "Ada Lovelace",
		"<b>Ada</b>\nLovelace":     "Ada Lovelace",
		"Ada\x00 Lovelace":         "Ada Lovelace",
		"Tom &amp; Jerry":          "Tom & Jerry",
		"<script>x</script>Robert": "xRobert",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, sanitizer.Name(in))
		})
	}
}

func TestMultiLine(t *testing.T) {
	t.Parallel()

	in := "  Hello   world \r\n\n\n\n<i>second</i>\tline  "
	assert.Equal(t, "Hello world\n\nsecond line", sanitizer.MultiLine(in))
	assert.Equal(t, "", sanitizer.MultiLine(" \n \n "))
}

func TestPhone(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "+15551234567", sanitizer.Phone(" +1 555 123 4567 "))
}

func TestApply(t *testing.T) {
	t.Parallel()
	got := sanitizer.Apply(" ABC ", strings.TrimSpace, strings.ToLower)
	assert.Equal(t, "abc", got)
}
