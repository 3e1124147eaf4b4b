package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ServerError is a non-2xx answer from the backend.
type ServerError struct {
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// Reason is the text shown to the user for err: the server detail when there is one,
// fallback for a server error without detail, the error text otherwise.
func Reason(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		if serverErr.Detail != "" {
			return serverErr.Detail
		}
		return fallback
	}
	return err.Error()
}

// parseDetail understands both {"detail": "text"} and the validation form
// {"detail": [{"msg": "..."}]}.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
