package listing_client

// Ответ GET /api/properties
type propertiesResponse struct {
	Properties      []propertyResponse `json:"properties"`
	TotalProperties int                `json:"totalProperties"`
	Page            int                `json:"page"`
	TotalPages      int                `json:"totalPages"`
	HasNext         bool               `json:"hasNext"`
	HasPrev         bool               `json:"hasPrev"`
}

type propertyResponse struct {
	ID           string   `json:"_id"`
	Title        string   `json:"title"`
	PropertyType string   `json:"propertyType"`
	Location     string   `json:"location"`
	Rent         int      `json:"rent"`
	Bedrooms     int      `json:"bedrooms"`
	FurnishType  string   `json:"furnishType"`
	TenantType   string   `json:"tenantType"`
	Images       []string `json:"images"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	IsPrime      bool     `json:"isPrime"`
}
