// Package activefilters выводит список "чипов" активных фильтров и их количество.
package activefilters

import (
	"fmt"

	"search-service/internal/core/domain"
)

// не считаются фильтрами для бейджа и не выводятся чипами
var excluded = map[string]bool{
	domain.KeyLocation:  true,
	domain.KeyLatitude:  true,
	domain.KeyLongitude: true,
	domain.KeyPage:      true,
	domain.KeyLimit:     true,
}

var flagLabels = map[string]string{
	domain.KeyStudentAllowed:   "Students Allowed",
	domain.KeyCoupleAllowed:    "Couples Allowed",
	domain.KeyFullyIndependent: "Fully Independent",
	domain.KeyOwnerFree:        "Owner Free",
	domain.KeyRentNegotiable:   "Rent Negotiable",
	domain.KeyPhotoOnly:        "With Photos",
	domain.KeyPrimeOnly:        "Prime Only",
}

// Counted - ключи, участвующие в подсчете, в порядке отображения
func Counted() []string {
	keys := make([]string, 0, len(domain.FilterKeys))
	for _, key := range domain.FilterKeys {
		if !excluded[key] {
			keys = append(keys, key)
		}
	}
	return keys
}

// Count - число полей, отличающихся от значений по умолчанию.
func Count(filters domain.SearchFilters) int {
	return len(List(filters))
}

// Keys - ключи активных фильтров
func Keys(filters domain.SearchFilters) []string {
	list := List(filters)
	keys := make([]string, len(list))
	for i, af := range list {
		keys[i] = af.Key
	}
	return keys
}

// List - чипы активных фильтров в каноническом порядке полей.
func List(filters domain.SearchFilters) []domain.ActiveFilter {
	f := filters.Normalize()
	out := make([]domain.ActiveFilter, 0)
	for _, key := range Counted() {
		if !f.IsSet(key) {
			continue
		}
		out = append(out, domain.ActiveFilter{Key: key, Label: label(f, key)})
	}
	return out
}

// Remove сбрасывает одно поле и возвращает на первую страницу.
func Remove(filters domain.SearchFilters, key string) (domain.SearchFilters, error) {
	if !domain.IsFilterKey(key) {
		return filters, fmt.Errorf("%w: %s", domain.ErrUnknownFilter, key)
	}
	f := filters.Clone()
	if err := f.Reset(key); err != nil {
		return filters, err
	}
	f.Page = domain.DefaultPage
	return f, nil
}

// ClearAll сбрасывает все считаемые фильтры; место и limit сохраняются.
func ClearAll(filters domain.SearchFilters) domain.SearchFilters {
	f := filters.Clone()
	for _, key := range Counted() {
		_ = f.Reset(key)
	}
	f.Page = domain.DefaultPage
	return f
}

func label(f domain.SearchFilters, key string) string {
	switch key {
	case domain.KeyPropertyType:
		return string(*f.PropertyType)
	case domain.KeyMinRent:
		return fmt.Sprintf("Min ₹%d", *f.MinRent)
	case domain.KeyMaxRent:
		return fmt.Sprintf("Max ₹%d", *f.MaxRent)
	case domain.KeyBedrooms:
		return fmt.Sprintf("%d BHK", *f.Bedrooms)
	case domain.KeyFurnishType:
		return string(*f.FurnishType)
	case domain.KeyTenantType:
		return "Tenant: " + string(*f.TenantType)
	}
	if l, ok := flagLabels[key]; ok {
		return l
	}
	return key
}
