// Package searchurl разбирает и собирает поисковые URL вида
// /search/<type>-for-rent-in-<location>/<type>/<lat>/<lng>?<filters>.
package searchurl

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"search-service/internal/core/domain"
)

// Root - корень поиска, в который собирается пустое состояние фильтров
const Root = "/search"

const (
	forRent        = "-for-rent"
	forRentIn      = "-for-rent-in-"
	allPropsPrefix = "properties"
)

var (
	// первое вхождение "in-" на границе слова (дефиса)
	locationPattern = regexp.MustCompile(`(?i)(?:^|-)in-(.+)$`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	slugForbidden   = regexp.MustCompile(`[^A-Za-z0-9-]`)
)

// ParseSegments извлекает частичные фильтры из сегментов пути после /search.
// Некорректные сегменты просто не дают значений, ошибок нет.
func ParseSegments(segments []string) domain.SearchFilters {
	var f domain.SearchFilters
	if len(segments) == 0 {
		return f
	}

	first := unescape(segments[0])
	if m := locationPattern.FindStringSubmatch(first); m != nil {
		location := strings.TrimSpace(whitespaceRun.ReplaceAllString(strings.ReplaceAll(m[1], "-", " "), " "))
		if location != "" {
			f.Location = &location
		}
	}

	lead, _, _ := strings.Cut(first, "-")
	if t, ok := domain.ParsePropertyType(lead); ok {
		f.PropertyType = &t
	}

	// второй сегмент подтверждает или переопределяет тип
	if len(segments) > 1 {
		if t, ok := domain.ParsePropertyType(unescape(segments[1])); ok {
			f.PropertyType = &t
		}
	}

	if len(segments) > 3 {
		lat, latOK := parseCoordinate(unescape(segments[2]), 90)
		lng, lngOK := parseCoordinate(unescape(segments[3]), 180)
		if latOK && lngOK {
			f.Latitude, f.Longitude = &lat, &lng
		}
	}

	return f
}

// BuildPath - обратная операция к ParseSegments (не биекция).
func BuildPath(filters domain.SearchFilters) string {
	f := filters.Normalize()

	slug := locationSlug(f)

	var segments []string
	switch {
	case f.PropertyType != nil && slug != "":
		t := f.PropertyType.Slug()
		segments = []string{t + forRentIn + slug, t}
		if pathCarriesCoordinates(f) {
			segments = append(segments, formatFloat(*f.Latitude), formatFloat(*f.Longitude))
		}
	case slug != "":
		segments = []string{allPropsPrefix + forRentIn + slug}
	case f.PropertyType != nil:
		t := f.PropertyType.Slug()
		segments = []string{t + forRent, t}
	default:
		return Root
	}

	return Root + "/" + strings.Join(segments, "/")
}

// pathCarriesCoordinates: координаты идут сегментами пути только после сегмента
// типа; без типа они уходят в query-string
func pathCarriesCoordinates(f domain.SearchFilters) bool {
	return f.PropertyType != nil && locationSlug(f) != "" && f.HasCoordinates()
}

// locationSlug - слаг места для пути или "", если от названия ничего не осталось
// (например, не латиница). Такое место уходит в query-string.
func locationSlug(f domain.SearchFilters) string {
	if f.Location == nil {
		return ""
	}
	slug := Slugify(*f.Location)
	if strings.Trim(slug, "-") == "" {
		return ""
	}
	return slug
}

// BuildURL собирает путь и query-string из непустых фильтров, не вошедших в путь.
func BuildURL(filters domain.SearchFilters) string {
	path := BuildPath(filters)
	query := EncodeQuery(filters).Encode()
	if query == "" {
		return path
	}
	return path + "?" + query
}

// Resolve применяет значения по умолчанию, затем путь, затем query-string.
func Resolve(rawURL string) domain.SearchFilters {
	segments, query := Split(rawURL)
	return Merge(segments, query)
}

// Merge - слияние в порядке возрастания приоритета: defaults -> path -> query.
func Merge(segments []string, query url.Values) domain.SearchFilters {
	return domain.DefaultFilters().
		Merge(ParseSegments(segments)).
		Merge(ParseQuery(query)).
		Normalize()
}

// Split делит URL на сегменты пути после /search и query-параметры.
// Неразбираемый URL дает пустой результат.
func Split(rawURL string) ([]string, url.Values) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, url.Values{}
	}

	path := u.EscapedPath()
	path = strings.TrimPrefix(path, Root)
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments, u.Query()
}

// Slugify: пробелы -> дефис, затем удаление всего вне [A-Za-z0-9-].
func Slugify(location string) string {
	s := whitespaceRun.ReplaceAllString(strings.TrimSpace(location), "-")
	return slugForbidden.ReplaceAllString(s, "")
}

func parseCoordinate(raw string, limit float64) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > limit {
		return 0, false
	}
	return v, true
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
