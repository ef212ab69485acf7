package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError is returned when no JSON object can be recovered from a reply.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

const fenceOpen = "```json"

// ParseObject recovers a JSON object from a free-form model reply. It tries,
// in order, the whole text, the body of the first ```json fence, and the
// span between the first '{' and the last '}'.
func ParseObject(raw string) (map[string]any, error) {
	var lastErr error

	for _, candidate := range candidates(raw) {
		obj, err := decodeObject(candidate)
		if err == nil {
			return obj, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no JSON object found")
	}
	return nil, &ParseError{Raw: raw, Err: lastErr}
}

func candidates(raw string) []string {
	out := []string{raw}

	if start := strings.Index(raw, fenceOpen); start != -1 {
		body := raw[start+len(fenceOpen):]
		if end := strings.Index(body, "```"); end > 0 {
			out = append(out, strings.TrimSpace(body[:end]))
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		out = append(out, raw[start:end+1])
	}

	return out
}

func decodeObject(s string) (map[string]any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty input")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("not a JSON object")
	}
	return obj, nil
}
