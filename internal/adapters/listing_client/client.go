package listing_client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"search-service/internal/adapters/httpclient"
	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
	"search-service/internal/core/searchurl"

	"github.com/hashicorp/go-retryablehttp"
)

// ListingAPIClient - клиент бэкенда объявлений, реализует port.ListingSearchPort.
type ListingAPIClient struct {
	baseURL    string
	httpClient *retryablehttp.Client
}

func NewListingAPIClient(baseURL string, cfg httpclient.Config, logger port.LoggerPort) *ListingAPIClient {
	return &ListingAPIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpclient.New(cfg, logger),
	}
}

// SearchListings: GET /api/properties. Фильтры передаются только непустые,
// плюс сортировка и пагинация всегда.
func (c *ListingAPIClient) SearchListings(ctx context.Context, query domain.ListingQuery) (*domain.ListingPage, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	clientLogger := logger.WithFields(port.Fields{
		"component": "ListingAPIClient",
		"method":    "SearchListings",
	})

	endpoint := c.baseURL + "/api/properties?" + encodeQuery(query).Encode()

	req, err := httpclient.NewRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		clientLogger.Error("Failed to build listing request", err, nil)
		return nil, err
	}

	clientLogger.Debug("Sending request to listing service", port.Fields{"url": endpoint})
	resp, err := c.httpClient.Do(req)
	if err != nil {
		clientLogger.Error("Failed to perform request to listing service", err, nil)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := httpclient.StatusError("listing service", resp)
		clientLogger.Error("Received non-OK response from listing service", err, port.Fields{"status_code": resp.StatusCode})
		return nil, err
	}

	var body propertiesResponse
	if err := httpclient.DecodeJSON(resp, &body); err != nil {
		clientLogger.Error("Failed to decode response from listing service", err, nil)
		return nil, err
	}

	return toDomainPage(body), nil
}

func encodeQuery(query domain.ListingQuery) url.Values {
	f := query.Filters.Normalize()
	v := searchurl.Values(f)

	sortBy, sortOrder := query.Sort.By, query.Sort.Order
	if sortBy == "" {
		sortBy = domain.DefaultSortBy
	}
	if sortOrder == "" {
		sortOrder = domain.DefaultSortOrder
	}
	v.Set("sortBy", sortBy)
	v.Set("sortOrder", sortOrder)
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("limit", strconv.Itoa(f.Limit))
	return v
}

func toDomainPage(body propertiesResponse) *domain.ListingPage {
	properties := make([]domain.Property, 0, len(body.Properties))
	for _, p := range body.Properties {
		images := p.Images
		if images == nil {
			images = []string{}
		}
		properties = append(properties, domain.Property{
			ID:           p.ID,
			Title:        p.Title,
			PropertyType: p.PropertyType,
			Location:     p.Location,
			Rent:         p.Rent,
			Bedrooms:     p.Bedrooms,
			FurnishType:  p.FurnishType,
			TenantType:   p.TenantType,
			Images:       images,
			Latitude:     p.Latitude,
			Longitude:    p.Longitude,
			IsPrime:      p.IsPrime,
		})
	}

	return &domain.ListingPage{
		Properties:      properties,
		TotalProperties: body.TotalProperties,
		Page:            body.Page,
		TotalPages:      body.TotalPages,
		HasNext:         body.HasNext,
		HasPrev:         body.HasPrev,
	}
}
