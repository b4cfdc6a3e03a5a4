package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/p-n-ai/stemblast/internal/quiz"
)

// handleQuizWS streams questions: every inbound request message is answered
// with one question. Questions sent on the connection count as history for
// later requests on it.
func (s *Server) handleQuizWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns,
	})
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(maxBodyBytes)

	ctx := r.Context()
	var sent []string

	for {
		var raw json.RawMessage
		if err := wsjson.Read(ctx, conn, &raw); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				slog.Debug("websocket read ended", "error", err)
			}
			return
		}

		req, err := decodeRequest(raw)
		if err != nil {
			if err := wsjson.Write(ctx, conn, errorResponse{Error: err.Error()}); err != nil {
				return
			}
			continue
		}

		q := s.serve(ctx, uuid.NewString(), req, sent)
		if !q.Placeholder {
			sent = append(sent, q.Question)
			sent = quiz.RecentHistory(sent, s.historyLimit)
		}

		if err := wsjson.Write(ctx, conn, q); err != nil {
			slog.Debug("websocket write failed", "error", err)
			return
		}
	}
}
