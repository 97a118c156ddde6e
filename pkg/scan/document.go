package scan

import (
	"encoding/json"

	"github.com/vigilante-ai/vigilante/pkg/store"
	"github.com/vigilante-ai/vigilante/pkg/vuln"
)

// scanToDocument converts a scan to its persisted document form via a
// JSON round-trip so the stored shape always matches the wire shape.
func scanToDocument(s *vuln.Scan) (store.Document, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var doc store.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DocumentToScan decodes a persisted document back into a scan.
func DocumentToScan(doc store.Document) (*vuln.Scan, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var s vuln.Scan
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// vulnsToValue converts a vulnerability list to the generic JSON form
// used in patch documents. Arrays replace wholesale on merge, so the
// final list always overwrites the empty list written at creation.
func vulnsToValue(vulns []vuln.Vulnerability) (any, error) {
	if vulns == nil {
		vulns = []vuln.Vulnerability{}
	}
	raw, err := json.Marshal(vulns)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
