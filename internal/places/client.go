// Package places talks to the external place search and geocoding provider.
// The provider is a collaborator, not part of this system: this package only
// shapes its suggestions and detail payloads into catalog metadata.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wayplanhq/wayplan-backend/internal/domain"
)

// Suggestion is one autocomplete hit from the search provider.
type Suggestion struct {
	ExternalID    string   `json:"external_id"`
	Description   string   `json:"description"`
	PrimaryText   string   `json:"primary_text"`
	SecondaryText string   `json:"secondary_text"`
	Tags          []string `json:"tags,omitempty"`
}

// SearchOptions narrows an autocomplete query.
type SearchOptions struct {
	Locale string
	Types  []string
}

type SearchProvider interface {
	Autocomplete(ctx context.Context, query string, opts SearchOptions) ([]Suggestion, error)
}

// DetailProvider resolves full place metadata for an external id, used to
// populate a catalog row on first creation.
type DetailProvider interface {
	Details(ctx context.Context, externalID string) (*domain.PlaceFields, error)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Autocomplete(ctx context.Context, query string, opts SearchOptions) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("places: empty query")
	}

	params := url.Values{}
	params.Set("q", query)
	if opts.Locale != "" {
		params.Set("locale", opts.Locale)
	}
	if len(opts.Types) > 0 {
		params.Set("types", strings.Join(opts.Types, ","))
	}

	var payload struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := c.get(ctx, "/v1/autocomplete", params, &payload); err != nil {
		return nil, err
	}
	return payload.Suggestions, nil
}

func (c *Client) Details(ctx context.Context, externalID string) (*domain.PlaceFields, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, errors.New("places: empty external id")
	}

	var payload struct {
		Place struct {
			Name             string   `json:"name"`
			FormattedAddress *string  `json:"formatted_address"`
			Summary          *string  `json:"summary"`
			Description      *string  `json:"description"`
			Tags             []string `json:"tags"`
			Latitude         *float64 `json:"latitude"`
			Longitude        *float64 `json:"longitude"`
			CountryCode      *string  `json:"country_code"`
			CountryName      *string  `json:"country_name"`
			PhotoRef         *string  `json:"photo_ref"`
		} `json:"place"`
	}
	if err := c.get(ctx, "/v1/places/"+url.PathEscape(externalID), url.Values{}, &payload); err != nil {
		return nil, err
	}

	return &domain.PlaceFields{
		Name:             payload.Place.Name,
		FormattedAddress: payload.Place.FormattedAddress,
		Summary:          payload.Place.Summary,
		Description:      payload.Place.Description,
		Tags:             domain.TagList(payload.Place.Tags),
		Latitude:         payload.Place.Latitude,
		Longitude:        payload.Place.Longitude,
		CountryCode:      payload.Place.CountryCode,
		CountryName:      payload.Place.CountryName,
		PhotoRef:         payload.Place.PhotoRef,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	endpoint := c.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("places: provider returned status %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

var (
	_ SearchProvider = (*Client)(nil)
	_ DetailProvider = (*Client)(nil)
)
