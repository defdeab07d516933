package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accountkit/pkg/jwt"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := jwt.New(nil)
	assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)

	_, err = jwt.New([]byte("short"))
	assert.ErrorIs(t, err, jwt.ErrWeakSigningKey)

	svc, err := jwt.New(testKey, jwt.WithTTL(time.Hour), jwt.WithLeeway(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, svc.TTL())
	assert.Equal(t, time.Minute, svc.Leeway())
}

func TestGenerateAndParse(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, err := jwt.New(testKey,
		jwt.WithIssuer("accountd"),
		jwt.WithTTL(time.Hour),
		jwt.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	tok, claims, err := svc.Generate("acc-1")
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(tok, ".")))
	assert.Equal(t, "acc-1", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, now.Add(time.Hour), claims.ExpiresAt.Time)

	parsed, err := svc.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", parsed.Subject)
	assert.Equal(t, "accountd", parsed.Issuer)
	assert.Equal(t, claims.ID, parsed.ID)

	exp, ok := jwt.ExpiresAt(tok)
	require.True(t, ok)
	assert.True(t, exp.Equal(now.Add(time.Hour)))
}

func TestParseFailures(t *testing.T) {
	t.Parallel()

	issuedAt := time.Now().Add(-2 * time.Hour)
	old, err := jwt.New(testKey, jwt.WithTTL(time.Hour), jwt.WithClock(func() time.Time { return issuedAt }))
	require.NoError(t, err)
	expired, _, err := old.Generate("acc-1")
	require.NoError(t, err)

	svc, err := jwt.New(testKey, jwt.WithIssuer("accountd"))
	require.NoError(t, err)
	other, err := jwt.New([]byte("ffffffffffffffffffffffffffffffff"), jwt.WithIssuer("accountd"))
	require.NoError(t, err)
	foreign, _, err := other.Generate("acc-1")
	require.NoError(t, err)

	noIssuer, err := jwt.New(testKey)
	require.NoError(t, err)
	wrongIssuer, _, err := noIssuer.Generate("acc-1")
	require.NoError(t, err)

	none, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, jwtlib.RegisteredClaims{
		Subject:   "acc-1",
		Issuer:    "accountd",
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS512, jwtlib.RegisteredClaims{
		Subject:   "acc-1",
		Issuer:    "accountd",
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(testKey)
	require.NoError(t, err)

	tests := []struct {
		name    string
		svc     *jwt.Service
		token   string
		wantErr error
	}{
		{"empty", svc, "", jwt.ErrMissingToken},
		{"garbage", svc, "not.a.token", jwt.ErrInvalidToken},
		{"expired", noIssuer, expired, jwt.ErrExpiredToken},
		{"foreign signature", svc, foreign, jwt.ErrInvalidSignature},
		{"wrong issuer", svc, wrongIssuer, jwt.ErrInvalidToken},
		{"alg none", svc, none, jwt.ErrInvalidSigningMethod},
		{"hs512", svc, hs512, jwt.ErrInvalidSigningMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.svc.Parse(tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpiresAtUnreadable(t *testing.T) {
	t.Parallel()
	_, ok := jwt.ExpiresAt("garbage")
	assert.False(t, ok)
}

func TestExtractors(t *testing.T) {
	t.Parallel()

	req := func(mod func(r *http.Request)) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		mod(r)
		return r
	}

	tests := []struct {
		name string
		r    *http.Request
		want string
	}{
		{"access token header", req(func(r *http.Request) { r.Header.Set("x-access-token", "abc") }), "abc"},
		{"bearer", req(func(r *http.Request) { r.Header.Set("Authorization", "Bearer xyz") }), "xyz"},
		{"bearer lowercase scheme", req(func(r *http.Request) { r.Header.Set("Authorization", "bearer xyz") }), "xyz"},
		{"header wins over bearer", req(func(r *http.Request) {
			r.Header.Set("x-access-token", "abc")
			r.Header.Set("Authorization", "Bearer xyz")
		}), "abc"},
		{"basic auth ignored", req(func(r *http.Request) { r.Header.Set("Authorization", "Basic xyz") }), ""},
		{"nothing", req(func(*http.Request) {}), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := jwt.DefaultExtractor()(tt.r)
			if tt.want == "" {
				assert.ErrorIs(t, err, jwt.ErrMissingToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
