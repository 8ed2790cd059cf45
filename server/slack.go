package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/FrostGod/EventDash/pkg/slogx"
	"github.com/FrostGod/EventDash/slack"
	"github.com/panjf2000/ants/v2"
)

const (
	headerSlackSignature = "X-Slack-Signature"
	headerSlackTimestamp = "X-Slack-Request-Timestamp"
	headerSlackRetry     = "X-Slack-Retry-Num"
)

func (s *Server) handleSlackEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	if s.signingSecret != "" {
		err := slack.VerifySignature(s.signingSecret, r.Header.Get(headerSlackSignature), r.Header.Get(headerSlackTimestamp), body, s.now())
		if err != nil {
			s.logger.WarnContext(ctx, "rejected slack request", slogx.Error(err))
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
	}

	ev, err := slack.ParseEvent(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if ev.Type == slack.TypeURLVerification {
		writeJSON(w, http.StatusOK, map[string]string{"challenge": ev.Challenge})
		return
	}

	// Slack retries when we are slow to acknowledge; the first delivery is already being answered.
	if r.Header.Get(headerSlackRetry) != "" || !ev.IsMention() {
		w.WriteHeader(http.StatusOK)
		return
	}
	if s.asker == nil || s.slack == nil {
		writeError(w, http.StatusServiceUnavailable, "slack assistant is not configured")
		return
	}

	bg := context.WithoutCancel(ctx)
	err = s.pool.Submit(func() { s.answerMention(bg, ev) })
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ants.ErrPoolOverload) || errors.Is(err, ants.ErrPoolClosed) {
			status = http.StatusServiceUnavailable
		}
		s.logger.WarnContext(ctx, "failed to schedule slack reply", slogx.Error(err))
		writeError(w, status, "busy")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func slackSessionID(ev slack.Event) string {
	return "slack:" + ev.Channel + ":" + ev.ReplyThread()
}

// answerMention runs the assistant for a mention and replies in its thread.
func (s *Server) answerMention(ctx context.Context, ev slack.Event) {
	ctx, cancel := context.WithTimeout(ctx, s.askTimeout)
	defer cancel()

	log := s.logger.With(slog.String("channel", ev.Channel), slog.String("event_id", ev.EventID))
	sessionID := slackSessionID(ev)

	thread, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		log.ErrorContext(ctx, "failed to load session", slogx.Error(err))
		return
	}

	reply, err := s.asker.Ask(ctx, thread, slack.StripMentions(ev.Text))
	if err != nil {
		log.ErrorContext(ctx, "assistant failed", slogx.Error(err))
		reply = "Sorry, something went wrong: " + err.Error()
	} else if err := s.sessions.Save(ctx, thread); err != nil {
		log.WarnContext(ctx, "failed to save session", slogx.Error(err))
	}

	if _, err := s.slack.PostMessage(ctx, ev.Channel, reply, ev.ReplyThread()); err != nil {
		log.ErrorContext(ctx, "failed to post slack reply", slogx.Error(err))
	}
}
