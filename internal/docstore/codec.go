package docstore

import (
	"encoding/json"
	"time"
)

// Sanitize drops nil-valued fields and stamps updatedAt (plus createdAt when
// withCreated is set). It returns a fresh map; the input is not mutated.
func Sanitize(data map[string]any, withCreated bool, now time.Time) map[string]any {
	clean := make(map[string]any, len(data)+2)
	for k, v := range data {
		if v == nil {
			continue
		}
		clean[k] = v
	}
	if withCreated {
		clean["createdAt"] = now
	}
	clean["updatedAt"] = now
	return clean
}

// Decode maps a document onto v (typically a domain struct) by way of its
// JSON tags. The document id is exposed to v under the "id" key.
func Decode(doc Document, v any) error {
	merged := make(map[string]any, len(doc.Data)+1)
	for k, val := range doc.Data {
		merged[k] = val
	}
	merged["id"] = doc.ID
	raw, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// DecodeAll decodes a slice of documents into a slice of T.
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := Decode(doc, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Encode turns a struct into a document data map via its JSON tags, dropping
// the "id" key so backends stay in charge of identity.
func Encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	delete(data, "id")
	return data, nil
}
