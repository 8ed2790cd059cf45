package server

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/FrostGod/EventDash/pkg/slogx"
	"github.com/FrostGod/EventDash/types"
	"github.com/tidwall/gjson"
)

// handleTranscript receives {"conversation_id": ..., "transcript": ...} from the telephony
// server. The transcript is persisted before it is published so a waiting orchestrator
// that deletes it after receipt always finds it.
func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if !gjson.ValidBytes(body) {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	res := gjson.GetManyBytes(body, "conversation_id", "transcript")
	id, text := strings.TrimSpace(res[0].String()), res[1].String()
	if id == "" || !res[1].Exists() {
		writeError(w, http.StatusBadRequest, "conversation_id and transcript are required")
		return
	}
	if s.publisher == nil {
		writeError(w, http.StatusServiceUnavailable, "no transcript channel configured")
		return
	}

	if s.transcripts != nil {
		if err := s.transcripts.Append(ctx, id, text); err != nil {
			s.logger.WarnContext(ctx, "failed to persist transcript", slogx.ConversationID(id), slogx.Error(err))
		}
	}
	if err := s.publisher.Publish(ctx, id, text); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish transcript", slogx.ConversationID(id), slogx.Error(err))
		status := http.StatusInternalServerError
		if types.IsChannelUnavailable(err) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}

	s.logger.InfoContext(ctx, "transcript relayed", slogx.ConversationID(id), slog.Int("bytes", len(text)))
	writeJSON(w, http.StatusAccepted, map[string]string{"conversation_id": id, "status": "published"})
}
