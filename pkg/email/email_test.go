package email_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accountkit/pkg/email"
)

func TestMessageValidate(t *testing.T) {
	t.Parallel()

	valid := email.Message{To: "a@b.co", Subject: "hi", TextBody: "body"}
	assert.NoError(t, valid.Validate())

	tests := map[string]email.Message{
		"bad recipient": {To: "nope", Subject: "hi", TextBody: "x"},
		"no subject":    {To: "a@b.co", TextBody: "x"},
		"no body":       {To: "a@b.co", Subject: "hi"},
	}
	for name, msg := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, msg.Validate(), email.ErrInvalidMessage)
		})
	}
}

func TestWelcome(t *testing.T) {
	t.Parallel()

	msg, err := email.Welcome(email.WelcomeData{Product: "Acme", Name: "<Ada>", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "Welcome to Acme", msg.Subject)
	assert.Equal(t, "welcome", msg.Tag)
	assert.Contains(t, msg.HTMLBody, "&lt;Ada&gt;")
	assert.Contains(t, msg.TextBody, "Welcome to Acme, <Ada>!")

	msg, err = email.Welcome(email.WelcomeData{Product: "Acme", Email: "x@example.com"})
	require.NoError(t, err)
	assert.Contains(t, msg.TextBody, "Welcome to Acme, there!")
}

func TestLogSender(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	s := email.NewLogSender(slog.New(slog.NewJSONHandler(buf, nil)))
	require.NoError(t, s.Send(context.Background(), email.Message{To: "a@b.co", Subject: "hi", TextBody: "x"}))
	assert.Contains(t, buf.String(), `"to":"a@b.co"`)

	assert.Error(t, s.Send(context.Background(), email.Message{}))
}

func TestNewSender(t *testing.T) {
	t.Parallel()

	s, err := email.NewSender(email.Config{SenderEmail: "no-reply@example.com"}, slog.Default())
	require.NoError(t, err)
	assert.IsType(t, &email.LogSender{}, s)

	s, err = email.NewSender(email.Config{PostmarkServerToken: "tok", SenderEmail: "no-reply@example.com"}, slog.Default())
	require.NoError(t, err)
	assert.IsType(t, &email.PostmarkSender{}, s)

	_, err = email.NewPostmarkSender(email.Config{PostmarkServerToken: "tok", SenderEmail: "bad"})
	assert.ErrorIs(t, err, email.ErrInvalidConfig)
}

func TestPostmarkSender(t *testing.T) {
	t.Parallel()

	t.Run("sends", func(t *testing.T) {
		t.Parallel()
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "server-token", r.Header.Get("X-Postmark-Server-Token"))
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ErrorCode":0,"Message":"OK","MessageID":"1"}`))
		}))
		defer srv.Close()

		s, err := email.NewPostmarkSender(email.Config{
			PostmarkServerToken: "server-token",
			SenderEmail:         "no-reply@example.com",
			SupportEmail:        "support@example.com",
		}, email.WithPostmarkBaseURL(srv.URL))
		require.NoError(t, err)

		require.NoError(t, s.Send(context.Background(), email.Message{To: "a@b.co", Subject: "hi", HTMLBody: "<p>x</p>", Tag: "welcome"}))
		assert.Equal(t, "a@b.co", got["To"])
		assert.Equal(t, "no-reply@example.com", got["From"])
		assert.Equal(t, "support@example.com", got["ReplyTo"])
		assert.Equal(t, "welcome", got["Tag"])
	})

	t.Run("api error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ErrorCode":300,"Message":"Invalid email request"}`))
		}))
		defer srv.Close()

		s, err := email.NewPostmarkSender(email.Config{PostmarkServerToken: "t", SenderEmail: "no-reply@example.com"},
			email.WithPostmarkBaseURL(srv.URL))
		require.NoError(t, err)

		err = s.Send(context.Background(), email.Message{To: "a@b.co", Subject: "hi", TextBody: "x"})
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
	})
}
