package schema

import "encoding/json"

// FoldExtra merges extra attribute payloads into an already-encoded JSON
// object. Keys present in the encoded object win over extras, so a record's
// modelled fields can never be shadowed by stale passthrough data.
func FoldExtra(encoded []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return encoded, nil
	}
	merged := make(map[string]json.RawMessage, len(extra)+8)
	for k, v := range extra {
		merged[k] = v
	}
	var known map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &known); err != nil {
		return nil, err
	}
	for k, v := range known {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// PruneKnown decodes a JSON object and drops the listed keys, returning
// whatever remains as raw payloads. Returns nil when nothing remains.
func PruneKnown(data []byte, known []string) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}
