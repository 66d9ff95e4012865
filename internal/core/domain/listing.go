package domain

const (
	DefaultSortBy    = "createdAt"
	DefaultSortOrder = "desc"
)

// Sort - параметры сортировки выдачи
type Sort struct {
	By    string
	Order string
}

// ListingQuery - запрос к бэкенду объявлений
type ListingQuery struct {
	Filters SearchFilters
	Sort    Sort
}

// Property - карточка объявления, как ее отдает бэкенд
type Property struct {
	ID           string
	Title        string
	PropertyType string
	Location     string
	Rent         int
	Bedrooms     int
	FurnishType  string
	TenantType   string
	Images       []string
	Latitude     *float64
	Longitude    *float64
	IsPrime      bool
}

// ListingPage - страница результатов
type ListingPage struct {
	Properties      []Property
	TotalProperties int
	Page            int
	TotalPages      int
	HasNext         bool
	HasPrev         bool
}
