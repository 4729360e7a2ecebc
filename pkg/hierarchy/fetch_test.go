package hierarchy

import (
	"context"
	"encoding/json"
	"testing"
)

func TestParseNodeRecord(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 7,
		"name": "Well 3",
		"type": {"code": "well"},
		"parent": {"id": 2},
		"instrumentations": {"items": [{"id": 10}, {"id": 11}]}
	}`)

	rec, err := parseNodeRecord(raw)
	if err != nil {
		t.Fatalf("parseNodeRecord failed: %v", err)
	}
	if rec.ID != 7 || rec.Name != "Well 3" || rec.Type != "well" {
		t.Errorf("Unexpected record: %+v", rec)
	}
	if rec.ParentID == nil || *rec.ParentID != 2 {
		t.Errorf("Expected parent id 2, got %v", rec.ParentID)
	}
	if len(rec.InstrumentationIDs) != 2 || rec.InstrumentationIDs[0] != 10 {
		t.Errorf("Unexpected instrumentation ids: %v", rec.InstrumentationIDs)
	}
}

func TestParseNodeRecordWithoutParent(t *testing.T) {
	raw := json.RawMessage(`{"id": 1, "name": "Plant", "type": {"code": "location"}}`)

	rec, err := parseNodeRecord(raw)
	if err != nil {
		t.Fatalf("parseNodeRecord failed: %v", err)
	}
	if rec.ParentID != nil {
		t.Errorf("Expected nil parent id, got %v", *rec.ParentID)
	}
}

func TestParseInstrumentationRecord(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 10,
		"tag": "FIT-001",
		"type": {"code": "flow"},
		"assets": {"items": [
			{"id": 100, "serial_number": "SN-100", "product": {"name": "Promag", "product_code": "5W4C"}},
			{"id": 101, "serial_number": "SN-101", "product": {}}
		]},
		"specifications": {"eh_nni_primary_key": {"value": "volumeflow"}},
		"values": [{"key": "volumeflow"}, {"key": "totalizer1"}],
		"thresholds": {"items": [
			{"key": "volumeflow", "name": "hi", "threshold_type": "upper", "value": 120.5}
		]}
	}`)

	rec, err := parseInstrumentationRecord(raw)
	if err != nil {
		t.Fatalf("parseInstrumentationRecord failed: %v", err)
	}
	if rec.Tag != "FIT-001" || rec.Type != "flow" {
		t.Errorf("Unexpected record: %+v", rec)
	}
	if rec.PrimaryValueKey != "volumeflow" {
		t.Errorf("Expected primary value key volumeflow, got %q", rec.PrimaryValueKey)
	}
	if len(rec.ValueKeys) != 2 {
		t.Errorf("Expected 2 value keys, got %v", rec.ValueKeys)
	}

	// Missing product fields fall back to "n.a."
	if rec.Assets[1].ProductName != "n.a." || rec.Assets[1].ProductCode != "n.a." {
		t.Errorf("Expected product fallback, got %+v", rec.Assets[1])
	}

	if len(rec.Thresholds) != 1 {
		t.Fatalf("Expected 1 threshold record, got %d", len(rec.Thresholds))
	}
	th := rec.Thresholds[0]
	if th.Key != "volumeflow" || th.Kind != "upper" || th.Value != 120.5 {
		t.Errorf("Unexpected threshold record: %+v", th)
	}
}

func TestParseInstrumentationRecordWithoutSpecifications(t *testing.T) {
	raw := json.RawMessage(`{"id": 12, "tag": "T", "type": {"code": "undefined"}}`)

	rec, err := parseInstrumentationRecord(raw)
	if err != nil {
		t.Fatalf("parseInstrumentationRecord failed: %v", err)
	}
	if rec.PrimaryValueKey != "" {
		t.Errorf("Expected empty primary value key, got %q", rec.PrimaryValueKey)
	}
	if len(rec.ValueKeys) != 0 {
		t.Errorf("Expected no value keys, got %v", rec.ValueKeys)
	}
}

func TestCloneFetchesBothListings(t *testing.T) {
	hub := newStubHub()
	hub.pages[nodesQuery] = []json.RawMessage{
		json.RawMessage(`{"id": 1, "name": "Plant", "type": {"code": "location"}}`),
	}
	hub.pages[instrumentationsQuery] = []json.RawMessage{
		json.RawMessage(`{"id": 10, "tag": "FIT", "type": {"code": "flow"},
			"assets": {"items": [{"id": 100, "serial_number": "SN", "product": {"name": "P", "product_code": "C"}}]}}`),
	}

	h, err := Clone(context.Background(), hub)
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	if h.NodeCount() != 1 || h.InstrumentationCount() != 1 || h.AssetCount() != 1 {
		t.Errorf("Unexpected registry sizes: %d nodes, %d instrumentations, %d assets",
			h.NodeCount(), h.InstrumentationCount(), h.AssetCount())
	}
	if len(hub.calls) != 2 {
		t.Errorf("Expected exactly 2 paginated fetches, got %v", hub.calls)
	}
}

func TestParseRecordRejectsMalformedJSON(t *testing.T) {
	if _, err := parseNodeRecord(json.RawMessage(`{"id": "not-a-number"}`)); err == nil {
		t.Error("Expected error for malformed node record")
	}
	if _, err := parseInstrumentationRecord(json.RawMessage(`[]`)); err == nil {
		t.Error("Expected error for malformed instrumentation record")
	}
}
