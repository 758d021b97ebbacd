// Package pow implements the proof-of-work admission puzzle: a canonical
// record serialization and a nonce solver over it.
package pow

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Canonicalize produces the deterministic serialization of a record:
// compact JSON with lexicographically sorted field names, no HTML escaping
// and numbers carried verbatim. Any two implementations that receive the
// same logical record must produce the same bytes, or every submission is
// rejected with nothing more specific than a generic failure. Fields named
// in exclude are dropped before encoding.
func Canonicalize(record any, exclude ...string) ([]byte, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}

	// Round-trip through a map so field order no longer matters. UseNumber
	// keeps 10 as 10, not 10.0, which is part of the byte contract.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("record must be a JSON object: %w", err)
	}

	for _, name := range exclude {
		delete(fields, name)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(fields); err != nil {
		return nil, fmt.Errorf("encoding canonical form: %w", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
