package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// Response is a user's answer to one question: TextResponse for free
// response, identification and multiple choice; MatchResponse for matching.
type Response interface {
	isResponse()
}

type TextResponse string

// MatchResponse maps each matching item to the match the user picked.
type MatchResponse map[string]string

func (TextResponse) isResponse()  {}
func (MatchResponse) isResponse() {}

// Responses maps question ids to the latest response for that question.
type Responses map[string]Response

// DecodeResponse reads a JSON string as a TextResponse and a JSON object of
// strings as a MatchResponse.
func DecodeResponse(raw json.RawMessage) (Response, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty response")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("decode text response: %w", err)
		}
		return TextResponse(s), nil
	case '{':
		var m map[string]string
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return nil, fmt.Errorf("decode match response: %w", err)
		}
		return MatchResponse(m), nil
	default:
		return nil, fmt.Errorf("response must be a string or an object of strings")
	}
}

// EncodeResponse is the inverse of DecodeResponse.
func EncodeResponse(r Response) (json.RawMessage, error) {
	switch v := r.(type) {
	case TextResponse:
		return json.Marshal(string(v))
	case MatchResponse:
		return json.Marshal(map[string]string(v))
	default:
		return nil, fmt.Errorf("unsupported response type %T", r)
	}
}

func cloneResponse(r Response) Response {
	if m, ok := r.(MatchResponse); ok {
		return MatchResponse(maps.Clone(m))
	}
	return r
}
