package domain

import "strings"

// PropertyType - тип объекта аренды
type PropertyType string

const (
	PropertyTypeRoom       PropertyType = "Room"
	PropertyTypeFlat       PropertyType = "Flat"
	PropertyTypePG         PropertyType = "PG"
	PropertyTypeCommercial PropertyType = "Commercial"
)

// PropertyTypes - все допустимые типы в порядке отображения
var PropertyTypes = []PropertyType{PropertyTypeRoom, PropertyTypeFlat, PropertyTypePG, PropertyTypeCommercial}

// ParsePropertyType нормализует строку (без учета регистра) к одному из значений enum.
func ParsePropertyType(s string) (PropertyType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range PropertyTypes {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

// Slug - представление типа в URL ("room", "pg", ...)
func (t PropertyType) Slug() string {
	return strings.ToLower(string(t))
}

type FurnishType string

const (
	FurnishFully       FurnishType = "Fully Furnished"
	FurnishSemi        FurnishType = "Semi Furnished"
	FurnishUnfurnished FurnishType = "Unfurnished"
)

var FurnishTypes = []FurnishType{FurnishFully, FurnishSemi, FurnishUnfurnished}

func ParseFurnishType(s string) (FurnishType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range FurnishTypes {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

type TenantType string

const (
	TenantAll          TenantType = "All"
	TenantBoys         TenantType = "Boys"
	TenantGirls        TenantType = "Girls"
	TenantBoysAndGirls TenantType = "Boys & Girls"
	TenantFamily       TenantType = "Family"
	TenantCompany      TenantType = "Company"
)

var TenantTypes = []TenantType{TenantAll, TenantBoys, TenantGirls, TenantBoysAndGirls, TenantFamily, TenantCompany}

func ParseTenantType(s string) (TenantType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range TenantTypes {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

const (
	DefaultPage  = 1
	DefaultLimit = 12
)

// Ключи полей фильтра. Совпадают с именами параметров query-string.
const (
	KeyPropertyType     = "propertyType"
	KeyLocation         = "location"
	KeyLatitude         = "latitude"
	KeyLongitude        = "longitude"
	KeyMinRent          = "minRent"
	KeyMaxRent          = "maxRent"
	KeyBedrooms         = "bedrooms"
	KeyFurnishType      = "furnishType"
	KeyTenantType       = "tenantType"
	KeyStudentAllowed   = "studentAllowed"
	KeyCoupleAllowed    = "coupleAllowed"
	KeyFullyIndependent = "fullyIndependent"
	KeyOwnerFree        = "ownerFree"
	KeyRentNegotiable   = "rentNegotiable"
	KeyPhotoOnly        = "photoOnly"
	KeyPrimeOnly        = "primeOnly"
	KeyPage             = "page"
	KeyLimit            = "limit"
)

// FlagKeys - булевы фильтры-признаки в порядке отображения
var FlagKeys = []string{
	KeyStudentAllowed, KeyCoupleAllowed, KeyFullyIndependent, KeyOwnerFree,
	KeyRentNegotiable, KeyPhotoOnly, KeyPrimeOnly,
}

// FilterKeys - все ключи фильтров в каноническом порядке
var FilterKeys = append([]string{
	KeyPropertyType, KeyLocation, KeyLatitude, KeyLongitude,
	KeyMinRent, KeyMaxRent, KeyBedrooms, KeyFurnishType, KeyTenantType,
}, append(append([]string{}, FlagKeys...), KeyPage, KeyLimit)...)

// SearchFilters - каноническое состояние поиска.
// nil означает "поле отсутствует" (нет ограничения). Признаки хранят только true.
type SearchFilters struct {
	PropertyType *PropertyType `json:"propertyType"`
	Location     *string       `json:"location"`
	Latitude     *float64      `json:"latitude"`
	Longitude    *float64      `json:"longitude"`
	MinRent      *int          `json:"minRent"`
	MaxRent      *int          `json:"maxRent"`
	Bedrooms     *int          `json:"bedrooms"`
	FurnishType  *FurnishType  `json:"furnishType"`
	TenantType   *TenantType   `json:"tenantType"`

	StudentAllowed   *bool `json:"studentAllowed"`
	CoupleAllowed    *bool `json:"coupleAllowed"`
	FullyIndependent *bool `json:"fullyIndependent"`
	OwnerFree        *bool `json:"ownerFree"`
	RentNegotiable   *bool `json:"rentNegotiable"`
	PhotoOnly        *bool `json:"photoOnly"`
	PrimeOnly        *bool `json:"primeOnly"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// DefaultFilters возвращает состояние "ничего не выбрано".
func DefaultFilters() SearchFilters {
	return SearchFilters{Page: DefaultPage, Limit: DefaultLimit}
}

// HasLocationOrType - есть ли у поиска "якорь": место или тип объекта.
// Без него не переписывается URL и не уходит запрос к бэкенду.
func (f SearchFilters) HasLocationOrType() bool {
	return f.Location != nil || f.PropertyType != nil
}

// HasCoordinates - заданы ли обе координаты
func (f SearchFilters) HasCoordinates() bool {
	return f.Latitude != nil && f.Longitude != nil
}

// Normalize приводит "пустые" значения ("", 0, false) к отсутствию поля
// и восстанавливает page/limit по умолчанию.
func (f SearchFilters) Normalize() SearchFilters {
	out := f.Clone()
	if out.PropertyType != nil && *out.PropertyType == "" {
		out.PropertyType = nil
	}
	if out.Location != nil && strings.TrimSpace(*out.Location) == "" {
		out.Location = nil
	}
	if out.Location == nil {
		out.Latitude, out.Longitude = nil, nil
	}
	if out.Latitude == nil || out.Longitude == nil {
		out.Latitude, out.Longitude = nil, nil
	}
	out.MinRent = zeroIntToNil(out.MinRent)
	out.MaxRent = zeroIntToNil(out.MaxRent)
	out.Bedrooms = zeroIntToNil(out.Bedrooms)
	if out.FurnishType != nil && *out.FurnishType == "" {
		out.FurnishType = nil
	}
	if out.TenantType != nil && *out.TenantType == "" {
		out.TenantType = nil
	}
	for _, key := range FlagKeys {
		p := out.flagRef(key)
		if *p != nil && !**p {
			*p = nil
		}
	}
	if out.Page < 1 {
		out.Page = DefaultPage
	}
	if out.Limit < 1 {
		out.Limit = DefaultLimit
	}
	return out
}

func zeroIntToNil(v *int) *int {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}

// Flag возвращает значение признака по ключу.
func (f SearchFilters) Flag(key string) bool {
	p := f.flagRef(key)
	return p != nil && *p != nil && **p
}

// SetFlag устанавливает признак. false равносилен отсутствию.
func (f *SearchFilters) SetFlag(key string, on bool) {
	p := f.flagRef(key)
	if p == nil {
		return
	}
	if on {
		*p = Ptr(true)
	} else {
		*p = nil
	}
}

func (f *SearchFilters) flagRef(key string) **bool {
	switch key {
	case KeyStudentAllowed:
		return &f.StudentAllowed
	case KeyCoupleAllowed:
		return &f.CoupleAllowed
	case KeyFullyIndependent:
		return &f.FullyIndependent
	case KeyOwnerFree:
		return &f.OwnerFree
	case KeyRentNegotiable:
		return &f.RentNegotiable
	case KeyPhotoOnly:
		return &f.PhotoOnly
	case KeyPrimeOnly:
		return &f.PrimeOnly
	}
	return nil
}

// IsFlagKey - является ли ключ булевым признаком
func IsFlagKey(key string) bool {
	for _, k := range FlagKeys {
		if k == key {
			return true
		}
	}
	return false
}

// IsFilterKey - известен ли ключ
func IsFilterKey(key string) bool {
	for _, k := range FilterKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Reset сбрасывает одно поле к значению по умолчанию.
func (f *SearchFilters) Reset(key string) error {
	switch key {
	case KeyPropertyType:
		f.PropertyType = nil
	case KeyLocation:
		f.Location, f.Latitude, f.Longitude = nil, nil, nil
	case KeyLatitude, KeyLongitude:
		f.Latitude, f.Longitude = nil, nil
	case KeyMinRent:
		f.MinRent = nil
	case KeyMaxRent:
		f.MaxRent = nil
	case KeyBedrooms:
		f.Bedrooms = nil
	case KeyFurnishType:
		f.FurnishType = nil
	case KeyTenantType:
		f.TenantType = nil
	case KeyPage:
		f.Page = DefaultPage
	case KeyLimit:
		f.Limit = DefaultLimit
	default:
		if !IsFlagKey(key) {
			return ErrUnknownFilter
		}
		f.SetFlag(key, false)
	}
	return nil
}

// IsSet - отличается ли поле от значения по умолчанию
func (f SearchFilters) IsSet(key string) bool {
	switch key {
	case KeyPropertyType:
		return f.PropertyType != nil
	case KeyLocation:
		return f.Location != nil
	case KeyLatitude:
		return f.Latitude != nil
	case KeyLongitude:
		return f.Longitude != nil
	case KeyMinRent:
		return f.MinRent != nil
	case KeyMaxRent:
		return f.MaxRent != nil
	case KeyBedrooms:
		return f.Bedrooms != nil
	case KeyFurnishType:
		return f.FurnishType != nil
	case KeyTenantType:
		return f.TenantType != nil
	case KeyPage:
		return f.Page != DefaultPage
	case KeyLimit:
		return f.Limit != DefaultLimit
	}
	return f.Flag(key)
}

// Clone делает глубокую копию, чтобы снимки состояния не разделяли указатели.
func (f SearchFilters) Clone() SearchFilters {
	out := f
	out.PropertyType = clonePtr(f.PropertyType)
	out.Location = clonePtr(f.Location)
	out.Latitude = clonePtr(f.Latitude)
	out.Longitude = clonePtr(f.Longitude)
	out.MinRent = clonePtr(f.MinRent)
	out.MaxRent = clonePtr(f.MaxRent)
	out.Bedrooms = clonePtr(f.Bedrooms)
	out.FurnishType = clonePtr(f.FurnishType)
	out.TenantType = clonePtr(f.TenantType)
	out.StudentAllowed = clonePtr(f.StudentAllowed)
	out.CoupleAllowed = clonePtr(f.CoupleAllowed)
	out.FullyIndependent = clonePtr(f.FullyIndependent)
	out.OwnerFree = clonePtr(f.OwnerFree)
	out.RentNegotiable = clonePtr(f.RentNegotiable)
	out.PhotoOnly = clonePtr(f.PhotoOnly)
	out.PrimeOnly = clonePtr(f.PrimeOnly)
	return out
}

// Merge накладывает заданные поля overlay поверх f (overlay имеет приоритет).
func (f SearchFilters) Merge(overlay SearchFilters) SearchFilters {
	out := f.Clone()
	o := overlay.Clone()
	if o.PropertyType != nil {
		out.PropertyType = o.PropertyType
	}
	if o.Location != nil {
		// координаты принадлежат месту: при смене места старые не переносим
		if out.Location == nil || *out.Location != *o.Location {
			out.Latitude, out.Longitude = nil, nil
		}
		out.Location = o.Location
	}
	if o.HasCoordinates() {
		out.Latitude, out.Longitude = o.Latitude, o.Longitude
	}
	if o.MinRent != nil {
		out.MinRent = o.MinRent
	}
	if o.MaxRent != nil {
		out.MaxRent = o.MaxRent
	}
	if o.Bedrooms != nil {
		out.Bedrooms = o.Bedrooms
	}
	if o.FurnishType != nil {
		out.FurnishType = o.FurnishType
	}
	if o.TenantType != nil {
		out.TenantType = o.TenantType
	}
	for _, key := range FlagKeys {
		if o.Flag(key) {
			out.SetFlag(key, true)
		}
	}
	if o.Page > 0 && o.Page != DefaultPage {
		out.Page = o.Page
	}
	if o.Limit > 0 && o.Limit != DefaultLimit {
		out.Limit = o.Limit
	}
	return out
}

// Equal сравнивает значения, а не указатели.
func (f SearchFilters) Equal(other SearchFilters) bool {
	if f.Page != other.Page || f.Limit != other.Limit {
		return false
	}
	for _, key := range FlagKeys {
		if f.Flag(key) != other.Flag(key) {
			return false
		}
	}
	return eqPtr(f.PropertyType, other.PropertyType) &&
		eqPtr(f.Location, other.Location) &&
		eqPtr(f.Latitude, other.Latitude) &&
		eqPtr(f.Longitude, other.Longitude) &&
		eqPtr(f.MinRent, other.MinRent) &&
		eqPtr(f.MaxRent, other.MaxRent) &&
		eqPtr(f.Bedrooms, other.Bedrooms) &&
		eqPtr(f.FurnishType, other.FurnishType) &&
		eqPtr(f.TenantType, other.TenantType)
}

// RentRangeInverted - minRent > maxRent. Конструкцией не запрещено, только сообщается.
func (f SearchFilters) RentRangeInverted() bool {
	return f.MinRent != nil && f.MaxRent != nil && *f.MinRent > *f.MaxRent
}

// Ptr - хелпер для литералов опциональных полей
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
