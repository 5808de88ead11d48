package usecases

import (
	"bytes"
	"encoding/json"

	"github.com/samirrijal/geodist/internal/core/domain"
)

// UnmarshalJSON flattens a JSON object into Fields. Values may be JSON
// numbers or numeric strings; null counts as missing. Anything else is kept
// verbatim and rejected later when it fails to parse as a number.
func (f *Fields) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Fields, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		switch {
		case len(v) == 0 || bytes.Equal(v, []byte("null")):
			continue
		case v[0] == '"':
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return &domain.ParseError{Field: k, Value: string(v), Err: err}
			}
			out[k] = s
		default:
			out[k] = string(v)
		}
	}
	*f = out
	return nil
}
