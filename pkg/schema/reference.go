package schema

import "encoding/json"

// referenceKeys are the JSON keys ReferenceRecord models explicitly.
// Everything else an upstream catalogue sends lands in Extra.
var referenceKeys = []string{
	"name", "description", "baseline", "parameters",
	"tags", "nsfw", "group", "version",
}

// ReferenceRecord is one entry from the model reference catalogue. The
// catalogue is human-authored and open-ended: records carry a stable set
// of fields the editor understands, plus whatever else the source decided
// to attach. Unknown fields are preserved verbatim in Extra and written
// back on marshal, so an edit/save cycle never strips data this service
// does not model.
type ReferenceRecord struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Baseline    string   `json:"baseline,omitempty"` // architecture family, e.g. "llama-3"
	Parameters  string   `json:"parameters,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	NSFW        bool     `json:"nsfw"`
	Group       string   `json:"group,omitempty"` // authoritative grouping label, overrides name-derived grouping
	Version     string   `json:"version,omitempty"`

	// Extra holds fields the catalogue sent that are not modelled above.
	Extra map[string]json.RawMessage `json:"-"`
}

func (r *ReferenceRecord) UnmarshalJSON(data []byte) error {
	type plain ReferenceRecord
	var rec plain
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	extra, err := PruneKnown(data, referenceKeys)
	if err != nil {
		return err
	}
	rec.Extra = extra
	*r = ReferenceRecord(rec)
	return nil
}

func (r ReferenceRecord) MarshalJSON() ([]byte, error) {
	type plain ReferenceRecord
	known, err := json.Marshal(plain(r))
	if err != nil {
		return nil, err
	}
	return FoldExtra(known, r.Extra)
}
