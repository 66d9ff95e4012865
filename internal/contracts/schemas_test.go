package contracts

import (
	"strings"
	"testing"
)

func TestGenerateKeyFromPath(t *testing.T) {
	tests := map[string]string{
		"events/search-performed/v1.json": "SearchPerformedEvent/1.0.0",
		"events/place-selected/v2.json":   "PlaceSelectedEvent/2.0.0",
		"events/broken.json":              "",
		"events/search-performed/1.json":  "",
	}
	for path, want := range tests {
		if got := generateKeyFromPath(path); got != want {
			t.Errorf("generateKeyFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestValidateSearchPerformedEvent(t *testing.T) {
	valid := `{
		"event_id": "5f0c6a52-8a7e-4d0e-9a3b-1f2e3d4c5b6a",
		"session_id": "0b7e1c3a-2d4f-4e6a-8b9c-1d2e3f4a5b6c",
		"occurred_at": "2026-03-01T10:00:00Z",
		"property_type": "Flat",
		"location": "pune",
		"geohash": "te7ud",
		"active_filters": ["location", "propertyType", "bedrooms"],
		"page": 1,
		"total_properties": 42,
		"sort_by": "createdAt",
		"sort_order": "desc"
	}`
	if err := ValidateEvent("SearchPerformedEvent", "1.0.0", []byte(valid)); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	invalid := strings.Replace(valid, `"desc"`, `"sideways"`, 1)
	if err := ValidateEvent("SearchPerformedEvent", "1.0.0", []byte(invalid)); err == nil {
		t.Error("unknown sort order should fail validation")
	}

	if err := ValidateEvent("SearchPerformedEvent", "9.0.0", []byte(valid)); err == nil {
		t.Error("unknown version should be reported")
	}
	if err := ValidateEvent("SearchPerformedEvent", "1.0.0", []byte("{")); err == nil {
		t.Error("broken JSON should be reported")
	}
}
