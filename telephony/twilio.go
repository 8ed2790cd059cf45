package telephony

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/pkg/slogx"
	"github.com/FrostGod/EventDash/types"
	"github.com/fogfish/opts"
	"github.com/tidwall/gjson"
)

// Twilio error code for updating a call that is no longer in progress.
const twilioCallNotInProgress = 21220

// Twilio is a minimal client for the Twilio Calls REST resource.
type Twilio struct {
	accountSID string
	authToken  string
	baseURL    string
	httpClient *http.Client
}

var (
	WithHTTPClient = opts.ForName[Twilio, *http.Client]("httpClient")
	WithAPIBaseURL = opts.ForName[Twilio, string]("baseURL")
)

// NewTwilio builds a client from the telephony settings. Account SID and auth token are required.
func NewTwilio(cfg config.Telephony, options ...opts.Option[Twilio]) (*Twilio, error) {
	var missing []string
	if cfg.AccountSID == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN")
	}
	if len(missing) > 0 {
		return nil, &types.ConfigurationError{Component: "twilio", Missing: missing}
	}

	tw := &Twilio{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		baseURL:    cfg.APIBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	if err := opts.Apply(tw, options); err != nil {
		return nil, err
	}
	if tw.baseURL == "" {
		tw.baseURL = "https://api.twilio.com"
	}
	tw.baseURL = strings.TrimRight(tw.baseURL, "/")
	return tw, nil
}

func (t *Twilio) CreateCall(ctx context.Context, params CreateCallParams) (string, error) {
	form := url.Values{}
	form.Set("To", params.To)
	form.Set("From", params.From)
	form.Set("Url", params.WebhookURL)
	form.Set("Method", http.MethodPost)
	if params.StatusCallbackURL != "" {
		form.Set("StatusCallback", params.StatusCallbackURL)
	}

	body, err := t.post(ctx, "create call", t.callsURL(""), form)
	if err != nil {
		return "", err
	}
	sid := gjson.GetBytes(body, "sid").String()
	if sid == "" {
		return "", &types.CallProviderError{Op: "create call", Message: "response carried no call sid"}
	}
	return sid, nil
}

func (t *Twilio) HangUp(ctx context.Context, sid string) error {
	form := url.Values{}
	form.Set("Status", "completed")

	_, err := t.post(ctx, "hang up", t.callsURL(sid), form)
	var perr *types.CallProviderError
	if errors.As(err, &perr) && (perr.Code == twilioCallNotInProgress || perr.StatusCode == http.StatusNotFound) {
		slog.Debug("call already finished", slog.String("sid", sid))
		return nil
	}
	return err
}

func (t *Twilio) callsURL(sid string) string {
	u := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls", t.baseURL, url.PathEscape(t.accountSID))
	if sid != "" {
		u += "/" + url.PathEscape(sid)
	}
	return u + ".json"
}

func (t *Twilio) post(ctx context.Context, op, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &types.CallProviderError{Op: op, Err: err}
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, &types.CallProviderError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &types.CallProviderError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode >= 300 {
		msg := gjson.GetBytes(body, "message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		slog.Warn("twilio request rejected",
			slogx.LoggerName("eventdash.telephony"),
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
			slog.String("message", msg),
		)
		return nil, &types.CallProviderError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Code:       gjson.GetBytes(body, "code").Int(),
			Message:    msg,
		}
	}
	return body, nil
}
