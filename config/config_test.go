package config

import (
	"testing"
	"time"

	"github.com/FrostGod/EventDash/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, BrokerRedis, cfg.Broker.Backend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Broker.RedisURL)
	assert.Equal(t, time.Second, cfg.Transcript.PollInterval)
	assert.Equal(t, 10*time.Minute, cfg.Transcript.WaitTimeout)
	assert.Equal(t, "https://api.twilio.com", cfg.Telephony.APIBaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, 16, cfg.Server.Workers)
	assert.Empty(t, cfg.Contacts)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"REDIS_HOST":               "redis",
		"TRANSCRIPT_BROKER":        "NATS",
		"TRANSCRIPT_WAIT_TIMEOUT":  "0s",
		"TRANSCRIPT_POLL_INTERVAL": "250ms",
		"ALLOWED_ORIGINS":          "http://a.test, http://b.test,",
		"CONTACTS":                 "Hall=+15550001; broken ;Cafe=+15550002",
		"TEST_PHONE_NUMBER":        "+15559999",
		"OPENAIKEY":                "sk-legacy",
		"YDC_API_KEY":              "ydc-legacy",
	}))
	require.NoError(t, err)

	assert.Equal(t, BrokerNATS, cfg.Broker.Backend)
	assert.Equal(t, "redis://redis:6379/0", cfg.Broker.RedisURL)
	assert.Equal(t, time.Duration(0), cfg.Transcript.WaitTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Transcript.PollInterval)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "sk-legacy", cfg.OpenAI.APIKey)
	assert.Equal(t, "ydc-legacy", cfg.Search.YouAPIKey)
	assert.Equal(t, []Contact{
		{Name: "Hall", Phone: "+15550001"},
		{Name: "Cafe", Phone: "+15550002"},
		{Name: "Test Venue", Phone: "+15559999"},
	}, cfg.Contacts)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad duration", env: map[string]string{"TRANSCRIPT_WAIT_TIMEOUT": "soon"}},
		{name: "negative duration", env: map[string]string{"TRANSCRIPT_POLL_INTERVAL": "-1s"}},
		{name: "unknown broker", env: map[string]string{"TRANSCRIPT_BROKER": "kafka"}},
		{name: "bad workers", env: map[string]string{"SERVER_WORKERS": "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(envMap(tt.env))
			require.Error(t, err)
			assert.True(t, types.IsConfigurationError(err))
		})
	}
}

func TestTelephonyValidate(t *testing.T) {
	t.Run("all missing", func(t *testing.T) {
		err := Telephony{}.Validate()
		var cfgErr *types.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, []string{
			"TELEPHONY_SERVER_BASE_URL",
			"OUTBOUND_CALLER_NUMBER",
			"TWILIO_ACCOUNT_SID",
			"TWILIO_AUTH_TOKEN",
		}, cfgErr.Missing)
	})

	t.Run("complete", func(t *testing.T) {
		err := Telephony{
			BaseURL:      "calls.example.com",
			CallerNumber: "+15550000",
			AccountSID:   "AC123",
			AuthToken:    "secret",
		}.Validate()
		assert.NoError(t, err)
	})
}
