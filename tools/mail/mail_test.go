package mail

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name              string
		input             string
		to, subject, text string
		wantErr           bool
	}{
		{name: "all fields", input: "a@b.test|Quote|Can you host 80 guests?", to: "a@b.test", subject: "Quote", text: "Can you host 80 guests?"},
		{name: "pipes in body", input: "a@b.test|Menu|fish | chips", to: "a@b.test", subject: "Menu", text: "fish | chips"},
		{name: "default subject", input: "a@b.test", to: "a@b.test", subject: "Inquiry"},
		{name: "blank subject", input: "a@b.test| |hi", to: "a@b.test", subject: "Inquiry", text: "hi"},
		{name: "no recipient", input: "|Quote|hi", wantErr: true},
		{name: "not an address", input: "venue|Quote|hi", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			to, subject, text, err := ParseMessage(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, to)
			assert.Equal(t, tt.subject, subject)
			assert.Equal(t, tt.text, text)
		})
	}
}

func TestMailgun(t *testing.T) {
	t.Run("requires configuration", func(t *testing.T) {
		_, err := NewMailgun(config.Mail{})
		var cfgErr *types.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, []string{"MAILGUNAPIKEY", "MAILGUN_DOMAIN"}, cfgErr.Missing)
	})

	t.Run("sends the message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v3/mg.example.com/messages", r.URL.Path)
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "api", user)
			assert.Equal(t, "key-1", pass)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "EventDash <mailgun@mg.example.com>", r.PostForm.Get("from"))
			assert.Equal(t, "venue@example.com", r.PostForm.Get("to"))
			assert.Equal(t, "Booking", r.PostForm.Get("subject"))
			assert.Equal(t, "Is June 3rd free?", r.PostForm.Get("text"))
			_, _ = w.Write([]byte(`{"id":"<20240501.1@mg.example.com>","message":"Queued. Thank you."}`))
		}))
		defer srv.Close()

		mg, err := NewMailgun(config.Mail{MailgunAPIKey: "key-1", Domain: "mg.example.com", BaseURL: srv.URL})
		require.NoError(t, err)

		out, err := mg.Tool().Invoke(context.Background(), "venue@example.com|Booking|Is June 3rd free?")
		require.NoError(t, err)
		assert.Equal(t, "email sent to venue@example.com (id <20240501.1@mg.example.com>)", out)
	})

	t.Run("surfaces rejections", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid private key"}`))
		}))
		defer srv.Close()

		mg, err := NewMailgun(config.Mail{MailgunAPIKey: "bad", Domain: "mg.example.com", BaseURL: srv.URL})
		require.NoError(t, err)
		_, err = mg.Send(context.Background(), "a@b.test", "s", "t")
		assert.EqualError(t, err, "mailgun returned status 401: Invalid private key")
	})
}
