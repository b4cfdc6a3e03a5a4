package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// maxBodyBytes caps a quiz request body or websocket message.
const maxBodyBytes = 64 << 10

var errInvalidRequest = errors.New("invalid request")

const requestSchema = `{
  "type": "object",
  "required": ["level"],
  "properties": {
    "level": {"type": "string", "minLength": 1, "maxLength": 64},
    "subject": {"type": "string", "maxLength": 64},
    "difficulty": {"type": "string", "maxLength": 32},
    "history": {
      "type": "array",
      "maxItems": 500,
      "items": {"type": "string", "maxLength": 1000}
    },
    "sessionId": {"type": "string", "maxLength": 128}
  }
}`

var compiledRequestSchema = func() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(requestSchema))
	if err != nil {
		panic(fmt.Sprintf("api: bad request schema: %v", err))
	}
	return s
}()

// quizRequest is the body of POST /api/quiz and each websocket message.
type quizRequest struct {
	Level      string   `json:"level"`
	Subject    string   `json:"subject,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
	History    []string `json:"history,omitempty"`
	SessionID  string   `json:"sessionId,omitempty"`
}

// decodeRequest validates and parses a request body.
func decodeRequest(data []byte) (quizRequest, error) {
	result, err := compiledRequestSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return quizRequest{}, fmt.Errorf("%w: body is not valid JSON", errInvalidRequest)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return quizRequest{}, fmt.Errorf("%w: %s", errInvalidRequest, strings.Join(msgs, "; "))
	}

	var req quizRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return quizRequest{}, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}

	req.Level = strings.TrimSpace(req.Level)
	req.Subject = strings.TrimSpace(req.Subject)
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.Level == "" {
		return quizRequest{}, fmt.Errorf("%w: level is required", errInvalidRequest)
	}
	return req, nil
}
