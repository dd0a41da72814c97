package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"bikebuild/apperr"
)

const maxBodyBytes = 1 << 20

// decodeBody reads a JSON object body into v. Keys may be camelCase or
// snake_case; when both spellings are present the camelCase one wins. An
// empty body decodes as {}.
func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			raw = map[string]json.RawMessage{}
		} else {
			return apperr.Invalid("Invalid request payload: %v", err)
		}
	}

	normalized := make(map[string]json.RawMessage, len(raw))
	for k, val := range raw {
		if camelCase(k) == k {
			normalized[k] = val
		}
	}
	for k, val := range raw {
		ck := camelCase(k)
		if _, ok := normalized[ck]; !ok {
			normalized[ck] = val
		}
	}

	data, err := json.Marshal(normalized)
	if err != nil {
		return apperr.Invalid("Invalid request payload: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperr.Invalid("Invalid request payload: %v", err)
	}
	return nil
}

// camelCase turns build_slot_id into buildSlotId. Keys without underscores
// are returned as is.
func camelCase(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	words := strings.Split(key, "_")
	var b strings.Builder
	b.WriteString(words[0])
	for _, w := range words[1:] {
		if w == "" {
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(w[1:])
	}
	return b.String()
}
