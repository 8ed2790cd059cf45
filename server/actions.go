package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/FrostGod/EventDash/pkg/slogx"
	"github.com/FrostGod/EventDash/types"
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

const defaultMessageVersion = "1.0"

// actionRequest is the action-group invocation an agent runtime sends for a tool call.
type actionRequest struct {
	MessageVersion string
	ActionGroup    string
	Function       string
	Input          string
}

type actionTextBody struct {
	Body string `json:"body"`
}

type actionResponseBody struct {
	Text actionTextBody `json:"TEXT"`
}

type actionFunctionResponse struct {
	ResponseBody actionResponseBody `json:"responseBody"`
}

type actionResponseInner struct {
	ActionGroup      string                 `json:"actionGroup"`
	Function         string                 `json:"function"`
	FunctionResponse actionFunctionResponse `json:"functionResponse"`
}

type actionResponse struct {
	MessageVersion string              `json:"messageVersion"`
	Response       actionResponseInner `json:"response"`
}

func newActionResponse(req actionRequest, body string) actionResponse {
	return actionResponse{
		MessageVersion: req.MessageVersion,
		Response: actionResponseInner{
			ActionGroup: req.ActionGroup,
			Function:    req.Function,
			FunctionResponse: actionFunctionResponse{
				ResponseBody: actionResponseBody{Text: actionTextBody{Body: body}},
			},
		},
	}
}

// parseActionRequest reads the invocation envelope. The tool input is the "input" parameter
// when present, the only parameter's value when there is one, and otherwise every value joined
// with "|" in the order sent.
func parseActionRequest(body []byte) (actionRequest, bool) {
	if !gjson.ValidBytes(body) {
		return actionRequest{}, false
	}
	root := gjson.ParseBytes(body)
	req := actionRequest{
		MessageVersion: root.Get("messageVersion").String(),
		ActionGroup:    root.Get("actionGroup").String(),
		Function:       root.Get("function").String(),
	}
	if req.MessageVersion == "" {
		req.MessageVersion = defaultMessageVersion
	}

	var values []string
	root.Get("parameters").ForEach(func(_, p gjson.Result) bool {
		if p.Get("name").String() == "input" {
			req.Input = p.Get("value").String()
			values = nil
			return false
		}
		values = append(values, p.Get("value").String())
		return true
	})
	if len(values) > 0 {
		req.Input = strings.Join(values, "|")
	}
	return req, req.Function != ""
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	req, ok := parseActionRequest(body)
	if !ok {
		writeError(w, http.StatusBadRequest, "function is required")
		return
	}
	if s.tools == nil {
		writeJSON(w, http.StatusServiceUnavailable, newActionResponse(req, errorBody("no tools configured")))
		return
	}

	out, err := s.tools.Invoke(ctx, req.Function, req.Input)
	if err != nil {
		s.logger.WarnContext(ctx, "action failed", slogx.Tool(req.Function), slogx.Error(err))
		status := http.StatusOK
		switch {
		case errors.Is(err, types.ErrUnknownTool):
			status = http.StatusNotFound
		case types.IsConfigurationError(err):
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, newActionResponse(req, errorBody(err.Error())))
		return
	}
	writeJSON(w, http.StatusOK, newActionResponse(req, out))
}

func errorBody(msg string) string {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return string(b)
}
