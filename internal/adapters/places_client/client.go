package places_client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"search-service/internal/adapters/httpclient"
	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"

	"github.com/hashicorp/go-retryablehttp"
)

// PlacesAPIClient - клиент сервиса автодополнения мест, реализует port.PlacesPort.
type PlacesAPIClient struct {
	baseURL    string
	httpClient *retryablehttp.Client
	now        func() time.Time
}

func NewPlacesAPIClient(baseURL string, cfg httpclient.Config, logger port.LoggerPort) *PlacesAPIClient {
	return &PlacesAPIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpclient.New(cfg, logger),
		now:        time.Now,
	}
}

func (c *PlacesAPIClient) Suggestions(ctx context.Context, input string) ([]domain.PlaceSuggestion, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PlacesAPIClient",
		"method":    "Suggestions",
	})

	endpoint := c.baseURL + "/api/places/autocomplete?" + url.Values{"input": {input}}.Encode()

	var body autocompleteResponse
	if err := c.get(ctx, endpoint, &body); err != nil {
		clientLogger.Error("Autocomplete request failed", err, port.Fields{"input": input})
		return nil, err
	}

	out := make([]domain.PlaceSuggestion, 0, len(body.Suggestions))
	for _, s := range body.Suggestions {
		if s.PlaceID == "" {
			continue
		}
		out = append(out, domain.PlaceSuggestion{
			PlaceID:       s.PlaceID,
			Description:   s.Description,
			MainText:      s.MainText,
			SecondaryText: s.SecondaryText,
		})
	}
	return out, nil
}

func (c *PlacesAPIClient) Details(ctx context.Context, placeID string) (*domain.PlaceDetails, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PlacesAPIClient",
		"method":    "Details",
		"place_id":  placeID,
	})

	endpoint := c.baseURL + "/api/places/details?" + url.Values{"place_id": {placeID}}.Encode()

	var body detailsResponse
	if err := c.get(ctx, endpoint, &body); err != nil {
		clientLogger.Error("Place details request failed", err, nil)
		return nil, err
	}

	return &domain.PlaceDetails{
		PlaceID:          placeID,
		Name:             body.Name,
		FormattedAddress: body.FormattedAddress,
		Latitude:         body.Geometry.Lat,
		Longitude:        body.Geometry.Lng,
		FetchedAt:        c.now().UTC(),
	}, nil
}

func (c *PlacesAPIClient) get(ctx context.Context, endpoint string, v interface{}) error {
	req, err := httpclient.NewRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request to places service: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return httpclient.DecodeJSON(resp, v)
	case http.StatusNotFound:
		return domain.ErrPlaceNotFound
	}
	return httpclient.StatusError("places service", resp)
}
