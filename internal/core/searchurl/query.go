package searchurl

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"search-service/internal/core/domain"
)

// поля, которые кодируются в пути и не дублируются в query-string
var pathKeys = map[string]bool{
	domain.KeyPropertyType: true,
	domain.KeyLocation:     true,
	domain.KeyLatitude:     true,
	domain.KeyLongitude:    true,
}

// ParseQuery разбирает query-string. Ключи совпадают с именами полей,
// неизвестные ключи (sortBy и т.п.) игнорируются.
func ParseQuery(values url.Values) domain.SearchFilters {
	var f domain.SearchFilters
	for _, key := range domain.FilterKeys {
		if !values.Has(key) {
			continue
		}
		ApplyValue(&f, key, values.Get(key))
	}
	// page/limit по умолчанию не должны перебивать значения из пути при слиянии
	if f.Page == domain.DefaultPage {
		f.Page = 0
	}
	if f.Limit == domain.DefaultLimit {
		f.Limit = 0
	}
	return f
}

// ApplyValues применяет набор правок. Пустая строка сбрасывает поле.
// Если хоть один ключ неизвестен, ничего не применяется.
func ApplyValues(f *domain.SearchFilters, values map[string]string) error {
	for key := range values {
		if !domain.IsFilterKey(key) {
			return fmt.Errorf("%w: %s", domain.ErrUnknownFilter, key)
		}
	}
	// канонический порядок: location применяется раньше координат
	for _, key := range domain.FilterKeys {
		if raw, ok := values[key]; ok {
			ApplyValue(f, key, raw)
		}
	}
	return nil
}

// ApplyValue приводит строку к типу поля. Невалидное значение = отсутствие.
// Возвращает false для неизвестного ключа.
func ApplyValue(f *domain.SearchFilters, key, raw string) bool {
	raw = strings.TrimSpace(raw)

	switch key {
	case domain.KeyPropertyType:
		f.PropertyType = nil
		if t, ok := domain.ParsePropertyType(raw); ok {
			f.PropertyType = &t
		}
	case domain.KeyLocation:
		if raw == "" {
			f.Location, f.Latitude, f.Longitude = nil, nil, nil
			return true
		}
		// новое место без выбора из подсказок - координаты прежнего места неактуальны
		if f.Location == nil || *f.Location != raw {
			f.Latitude, f.Longitude = nil, nil
		}
		f.Location = &raw
	case domain.KeyLatitude:
		f.Latitude = nil
		if v, ok := parseCoordinate(raw, 90); ok {
			f.Latitude = &v
		}
	case domain.KeyLongitude:
		f.Longitude = nil
		if v, ok := parseCoordinate(raw, 180); ok {
			f.Longitude = &v
		}
	case domain.KeyMinRent:
		f.MinRent = parsePositiveInt(raw)
	case domain.KeyMaxRent:
		f.MaxRent = parsePositiveInt(raw)
	case domain.KeyBedrooms:
		f.Bedrooms = parsePositiveInt(raw)
	case domain.KeyFurnishType:
		f.FurnishType = nil
		if t, ok := domain.ParseFurnishType(raw); ok {
			f.FurnishType = &t
		}
	case domain.KeyTenantType:
		f.TenantType = nil
		if t, ok := domain.ParseTenantType(raw); ok {
			f.TenantType = &t
		}
	case domain.KeyPage:
		f.Page = domain.DefaultPage
		if p := parsePositiveInt(raw); p != nil {
			f.Page = *p
		}
	case domain.KeyLimit:
		f.Limit = domain.DefaultLimit
		if l := parsePositiveInt(raw); l != nil {
			f.Limit = *l
		}
	default:
		if !domain.IsFlagKey(key) {
			return false
		}
		f.SetFlag(key, strings.EqualFold(raw, "true"))
	}
	return true
}

// Values - все непустые поля фильтра (без page/limit) в виде параметров.
func Values(filters domain.SearchFilters) url.Values {
	f := filters.Normalize()
	v := url.Values{}
	if f.PropertyType != nil {
		v.Set(domain.KeyPropertyType, string(*f.PropertyType))
	}
	if f.Location != nil {
		v.Set(domain.KeyLocation, *f.Location)
	}
	if f.HasCoordinates() {
		v.Set(domain.KeyLatitude, formatFloat(*f.Latitude))
		v.Set(domain.KeyLongitude, formatFloat(*f.Longitude))
	}
	if f.MinRent != nil {
		v.Set(domain.KeyMinRent, strconv.Itoa(*f.MinRent))
	}
	if f.MaxRent != nil {
		v.Set(domain.KeyMaxRent, strconv.Itoa(*f.MaxRent))
	}
	if f.Bedrooms != nil {
		v.Set(domain.KeyBedrooms, strconv.Itoa(*f.Bedrooms))
	}
	if f.FurnishType != nil {
		v.Set(domain.KeyFurnishType, string(*f.FurnishType))
	}
	if f.TenantType != nil {
		v.Set(domain.KeyTenantType, string(*f.TenantType))
	}
	for _, key := range domain.FlagKeys {
		if f.Flag(key) {
			v.Set(key, "true")
		}
	}
	return v
}

// EncodeQuery - query-string поискового URL: фильтры вне пути,
// page и limit только если отличаются от значений по умолчанию.
func EncodeQuery(filters domain.SearchFilters) url.Values {
	f := filters.Normalize()
	v := Values(f)
	for key := range pathKeys {
		v.Del(key)
	}
	if f.Location != nil && locationSlug(f) == "" {
		v.Set(domain.KeyLocation, *f.Location)
	}
	if f.HasCoordinates() && !pathCarriesCoordinates(f) {
		v.Set(domain.KeyLatitude, formatFloat(*f.Latitude))
		v.Set(domain.KeyLongitude, formatFloat(*f.Longitude))
	}
	if f.Page != domain.DefaultPage {
		v.Set(domain.KeyPage, strconv.Itoa(f.Page))
	}
	if f.Limit != domain.DefaultLimit {
		v.Set(domain.KeyLimit, strconv.Itoa(f.Limit))
	}
	return v
}

func parsePositiveInt(raw string) *int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}
