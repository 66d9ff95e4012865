package searchurl

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"search-service/internal/core/domain"
)

// Title - заголовок страницы выдачи
func Title(filters domain.SearchFilters) string {
	f := filters.Normalize()
	location := displayLocation(f)

	switch {
	case f.PropertyType != nil && location != "":
		return fmt.Sprintf("%s for Rent in %s", *f.PropertyType, location)
	case location != "":
		return fmt.Sprintf("Properties for Rent in %s", location)
	case f.PropertyType != nil:
		return fmt.Sprintf("%s for Rent", *f.PropertyType)
	}
	return "Properties for Rent"
}

// Description - мета-описание страницы выдачи
func Description(filters domain.SearchFilters) string {
	f := filters.Normalize()
	location := displayLocation(f)

	what := "rental properties"
	if f.PropertyType != nil {
		what = describeType(*f.PropertyType)
	}

	where := ""
	if location != "" {
		where = " in " + location
	}

	return fmt.Sprintf("Find %s for rent%s. Compare rent, bedrooms, furnishing and tenant preferences, and contact owners directly.", what, where)
}

func displayLocation(f domain.SearchFilters) string {
	if f.Location == nil {
		return ""
	}
	return cases.Title(language.English).String(strings.TrimSpace(*f.Location))
}

func describeType(t domain.PropertyType) string {
	switch t {
	case domain.PropertyTypeRoom:
		return "rooms"
	case domain.PropertyTypeFlat:
		return "flats"
	case domain.PropertyTypePG:
		return "PG accommodations"
	case domain.PropertyTypeCommercial:
		return "commercial spaces"
	}
	return "rental properties"
}
