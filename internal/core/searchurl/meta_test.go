package searchurl

import (
	"strings"
	"testing"

	"search-service/internal/core/domain"
)

func TestTitle(t *testing.T) {
	flat := domain.PropertyTypeFlat
	pg := domain.PropertyTypePG

	tests := []struct {
		name    string
		filters domain.SearchFilters
		want    string
	}{
		{"nothing", domain.DefaultFilters(), "Properties for Rent"},
		{"type", domain.SearchFilters{PropertyType: &pg}, "PG for Rent"},
		{"location", domain.SearchFilters{Location: domain.Ptr("new delhi")}, "Properties for Rent in New Delhi"},
		{"both", domain.SearchFilters{PropertyType: &flat, Location: domain.Ptr("navi mumbai")}, "Flat for Rent in Navi Mumbai"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.filters); got != tt.want {
				t.Errorf("Title: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescription(t *testing.T) {
	pg := domain.PropertyTypePG
	got := Description(domain.SearchFilters{PropertyType: &pg, Location: domain.Ptr("pune")})

	if !strings.HasPrefix(got, "Find PG accommodations for rent in Pune.") {
		t.Errorf("Description: got %q", got)
	}

	if got := Description(domain.DefaultFilters()); !strings.HasPrefix(got, "Find rental properties for rent.") {
		t.Errorf("Description without filters: got %q", got)
	}
}
