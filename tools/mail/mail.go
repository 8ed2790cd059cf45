// Package mail sends email through Mailgun on the assistant's behalf.
package mail

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/tool"
	"github.com/FrostGod/EventDash/types"
	"github.com/fogfish/opts"
	"github.com/tidwall/gjson"
)

const (
	Name           = "send_email"
	defaultSubject = "Inquiry"
)

type Mailgun struct {
	apiKey     string
	domain     string
	from       string
	baseURL    string
	httpClient *http.Client
}

var WithHTTPClient = opts.ForName[Mailgun, *http.Client]("httpClient")

func NewMailgun(cfg config.Mail, options ...opts.Option[Mailgun]) (*Mailgun, error) {
	var missing []string
	if cfg.MailgunAPIKey == "" {
		missing = append(missing, "MAILGUNAPIKEY")
	}
	if cfg.Domain == "" {
		missing = append(missing, "MAILGUN_DOMAIN")
	}
	if len(missing) > 0 {
		return nil, &types.ConfigurationError{Component: "mailgun", Missing: missing}
	}

	m := &Mailgun{
		apiKey:     cfg.MailgunAPIKey,
		domain:     cfg.Domain,
		from:       cfg.From,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	if m.from == "" {
		m.from = fmt.Sprintf("EventDash <mailgun@%s>", cfg.Domain)
	}
	if m.baseURL == "" {
		m.baseURL = "https://api.mailgun.net"
	}
	if err := opts.Apply(m, options); err != nil {
		return nil, err
	}
	return m, nil
}

// Send delivers a plain text message and returns the Mailgun message id.
func (m *Mailgun) Send(ctx context.Context, to, subject, text string) (string, error) {
	form := url.Values{}
	form.Set("from", m.from)
	form.Set("to", to)
	form.Set("subject", subject)
	form.Set("text", text)

	endpoint := fmt.Sprintf("%s/v3/%s/messages", m.baseURL, url.PathEscape(m.domain))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth("api", m.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return "", fmt.Errorf("mailgun returned status %d: %s", resp.StatusCode, msg)
	}
	return gjson.GetBytes(body, "id").String(), nil
}

// ParseMessage reads "recipient|subject|text". Subject and text are optional; everything
// after the second pipe is the body.
func ParseMessage(input string) (to, subject, text string, err error) {
	parts := strings.SplitN(input, "|", 3)
	to = strings.TrimSpace(parts[0])
	if to == "" || !strings.Contains(to, "@") {
		return "", "", "", fmt.Errorf("invalid recipient %q: expected recipient|subject|text", to)
	}
	subject = defaultSubject
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		subject = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		text = strings.TrimSpace(parts[2])
	}
	return to, subject, text, nil
}

func (m *Mailgun) Tool() tool.Definition {
	return tool.Must(func(ctx context.Context, input string) (string, error) {
		to, subject, text, err := ParseMessage(input)
		if err != nil {
			return "", err
		}
		id, err := m.Send(ctx, to, subject, text)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("email sent to %s (id %s)", to, id), nil
	},
		tool.Name(Name),
		tool.Description("Send an email using the Mailgun API. Requires the recipient email address, a subject and the text, "+
			"separated by pipes: 'recipient|subject|text'."),
		tool.InputDescription("recipient|subject|text"),
	)
}
