// Package config loads EventDash settings from the environment into explicit structs.
//
// Nothing in EventDash reads the environment after startup: binaries call Load once
// (with .env files picked up by godotenv) and hand the sections to constructors.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/FrostGod/EventDash/pkg/stdx"
	"github.com/FrostGod/EventDash/types"
)

const (
	BrokerRedis = "redis"
	BrokerNATS  = "nats"
	BrokerLocal = "local"
)

const (
	defaultPollInterval = time.Second
	defaultWaitTimeout  = 10 * time.Minute
	defaultTwilioAPI    = "https://api.twilio.com"
	defaultModel        = "gpt-4o-mini"
	defaultTaskQueue    = "eventdash-calls"
	defaultListenAddr   = ":3000"
)

// Config is the complete EventDash configuration.
type Config struct {
	Telephony  Telephony
	Broker     Broker
	Transcript Transcript
	OpenAI     OpenAI
	Search     Search
	Mail       Mail
	Slack      Slack
	Temporal   Temporal
	Server     Server
	Contacts   []Contact
	LogLevel   string
}

// Telephony holds the outbound calling settings. All fields except APIBaseURL are required
// to place a call.
type Telephony struct {
	BaseURL      string
	CallerNumber string
	AccountSID   string
	AuthToken    string
	APIBaseURL   string
}

// Validate reports every missing required telephony variable at once.
func (t Telephony) Validate() error {
	var missing []string
	if t.BaseURL == "" {
		missing = append(missing, "TELEPHONY_SERVER_BASE_URL")
	}
	if t.CallerNumber == "" {
		missing = append(missing, "OUTBOUND_CALLER_NUMBER")
	}
	if t.AccountSID == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID")
	}
	if t.AuthToken == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN")
	}
	if len(missing) > 0 {
		return &types.ConfigurationError{Component: "telephony", Missing: missing}
	}
	return nil
}

// Broker selects and locates the transcript broker.
type Broker struct {
	Backend  string
	RedisURL string
	NATSURL  string
}

func (b Broker) Validate() error {
	switch b.Backend {
	case BrokerRedis:
		if b.RedisURL == "" {
			return &types.ConfigurationError{Component: "broker", Missing: []string{"REDIS_URL"}}
		}
	case BrokerNATS:
		if b.NATSURL == "" {
			return &types.ConfigurationError{Component: "broker", Missing: []string{"NATS_URL"}}
		}
	case BrokerLocal:
	default:
		return &types.ConfigurationError{Component: "broker", Err: fmt.Errorf("unknown backend %q", b.Backend)}
	}
	return nil
}

// Transcript controls how long the orchestrator waits and where transcripts are persisted.
// A zero WaitTimeout means wait without bound.
type Transcript struct {
	PollInterval time.Duration
	WaitTimeout  time.Duration
	Dir          string
}

type OpenAI struct {
	APIKey  string
	BaseURL string
	Model   string
}

type Search struct {
	YouAPIKey     string
	YouBaseURL    string
	DuckDuckGoURL string
}

type Mail struct {
	MailgunAPIKey string
	Domain        string
	From          string
	BaseURL       string
}

type Slack struct {
	BotToken      string
	SigningSecret string
	BaseURL       string
}

type Temporal struct {
	Address   string
	Namespace string
	TaskQueue string
}

type Server struct {
	Addr           string
	AllowedOrigins []string
	Workers        int
}

// Contact is an entry returned by the contacts tool.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv. Only values that are malformed fail here;
// missing telephony settings are reported by Telephony.Validate when a call is placed.
func LoadFrom(getenv func(string) string) (Config, error) {
	env := lookup(getenv)

	pollInterval, err := env.duration("TRANSCRIPT_POLL_INTERVAL", defaultPollInterval)
	if err != nil {
		return Config{}, err
	}
	waitTimeout, err := env.duration("TRANSCRIPT_WAIT_TIMEOUT", defaultWaitTimeout)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Telephony: Telephony{
			BaseURL:      env.str("TELEPHONY_SERVER_BASE_URL", ""),
			CallerNumber: env.str("OUTBOUND_CALLER_NUMBER", ""),
			AccountSID:   env.str("TWILIO_ACCOUNT_SID", ""),
			AuthToken:    env.str("TWILIO_AUTH_TOKEN", ""),
			APIBaseURL:   env.str("TWILIO_API_BASE_URL", defaultTwilioAPI),
		},
		Broker: Broker{
			Backend:  strings.ToLower(env.str("TRANSCRIPT_BROKER", BrokerRedis)),
			RedisURL: env.str("REDIS_URL", "redis://"+env.str("REDIS_HOST", "localhost")+":6379/0"),
			NATSURL:  env.str("NATS_URL", "nats://127.0.0.1:4222"),
		},
		Transcript: Transcript{
			PollInterval: pollInterval,
			WaitTimeout:  waitTimeout,
			Dir:          env.str("CALL_TRANSCRIPTS_DIR", "call_transcripts"),
		},
		OpenAI: OpenAI{
			APIKey:  stdx.FirstNonEmpty(env.str("OPENAI_API_KEY", ""), env.str("OPENAIKEY", "")),
			BaseURL: env.str("OPENAI_BASE_URL", ""),
			Model:   env.str("OPENAI_DEFAULT_MODEL", defaultModel),
		},
		Search: Search{
			YouAPIKey:     stdx.FirstNonEmpty(env.str("YOUAPIKEY", ""), env.str("YDC_API_KEY", "")),
			YouBaseURL:    env.str("YOU_BASE_URL", "https://api.ydc-index.io"),
			DuckDuckGoURL: env.str("DUCKDUCKGO_BASE_URL", "https://api.duckduckgo.com"),
		},
		Mail: Mail{
			MailgunAPIKey: env.str("MAILGUNAPIKEY", ""),
			Domain:        env.str("MAILGUN_DOMAIN", ""),
			From:          env.str("MAILGUN_FROM", ""),
			BaseURL:       env.str("MAILGUN_BASE_URL", "https://api.mailgun.net"),
		},
		Slack: Slack{
			BotToken:      env.str("SLACK_BOT_TOKEN", ""),
			SigningSecret: env.str("SLACK_SIGNING_SECRET", ""),
			BaseURL:       env.str("SLACK_API_BASE_URL", "https://slack.com/api"),
		},
		Temporal: Temporal{
			Address:   env.str("TEMPORAL_ADDRESS", "localhost:7233"),
			Namespace: env.str("TEMPORAL_NAMESPACE", "default"),
			TaskQueue: env.str("TEMPORAL_TASK_QUEUE", defaultTaskQueue),
		},
		Server: Server{
			Addr:           env.str("LISTEN_ADDR", defaultListenAddr),
			AllowedOrigins: env.list("ALLOWED_ORIGINS"),
		},
		Contacts: parseContacts(env.str("CONTACTS", ""), env.str("TEST_PHONE_NUMBER", "")),
		LogLevel: strings.ToLower(env.str("LOG_LEVEL", "info")),
	}

	workers, err := env.integer("SERVER_WORKERS", 16)
	if err != nil {
		return Config{}, err
	}
	cfg.Server.Workers = workers

	if err := cfg.Broker.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parseContacts reads "Name=+15550001;Other=+15550002". The test number, when set, is exposed
// as the "Test Venue" contact.
func parseContacts(raw, testNumber string) []Contact {
	var contacts []Contact
	for _, entry := range strings.Split(raw, ";") {
		name, phone, ok := strings.Cut(strings.TrimSpace(entry), "=")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(phone) == "" {
			continue
		}
		contacts = append(contacts, Contact{Name: strings.TrimSpace(name), Phone: strings.TrimSpace(phone)})
	}
	if testNumber != "" {
		contacts = append(contacts, Contact{Name: "Test Venue", Phone: testNumber})
	}
	return contacts
}
