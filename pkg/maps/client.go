// Package maps is a small client for the Google Places API (New), used to
// turn free-text address searches into coordinates.
package maps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
)

const (
	defaultBaseURL              = "https://places.googleapis.com/v1"
	defaultTimeout              = 10 * time.Second
	autocompleteFieldMask       = "suggestions.placePrediction.placeId,suggestions.placePrediction.text,suggestions.placePrediction.structuredFormat"
	placeDetailsFieldMask       = "id,displayName,formattedAddress,location"
	errorBodyReadLimit    int64 = 1024
)

var errAPIKeyRequired = errors.New("google maps api key is required")

// Client wraps the Places endpoints used for address search.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the Places base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds a Places client for apiKey.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// AutocompleteRequest is the payload sent to places:autocomplete.
type AutocompleteRequest struct {
	Input               string   `json:"input"`
	IncludedRegionCodes []string `json:"includedRegionCodes,omitempty"`
	LanguageCode        string   `json:"languageCode,omitempty"`
}

// Prediction is one autocomplete candidate.
type Prediction struct {
	PlaceID     string
	Description string
	MainText    string
}

// PlaceDetails is the subset of a place record the storefront needs.
type PlaceDetails struct {
	PlaceID          string
	DisplayName      string
	FormattedAddress string
	Location         LatLng
}

// LatLng is a latitude/longitude pair.
type LatLng struct {
	Latitude  float64
	Longitude float64
}

// Autocomplete returns place predictions for partial input.
func (c *Client) Autocomplete(ctx context.Context, req AutocompleteRequest) ([]Prediction, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}
	if strings.TrimSpace(req.Input) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "autocomplete input is required")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal autocomplete request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("places:autocomplete"), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build autocomplete request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var apiResp struct {
		Suggestions []struct {
			Prediction struct {
				PlaceID string `json:"placeId"`
				Text    struct {
					Text string `json:"text"`
				} `json:"text"`
				StructuredFormat struct {
					MainText struct {
						Text string `json:"text"`
					} `json:"mainText"`
				} `json:"structuredFormat"`
			} `json:"placePrediction"`
		} `json:"suggestions"`
	}
	if err := c.do(httpReq, autocompleteFieldMask, "autocomplete", &apiResp); err != nil {
		return nil, err
	}

	predictions := make([]Prediction, 0, len(apiResp.Suggestions))
	for _, s := range apiResp.Suggestions {
		if s.Prediction.PlaceID == "" {
			continue
		}
		predictions = append(predictions, Prediction{
			PlaceID:     s.Prediction.PlaceID,
			Description: s.Prediction.Text.Text,
			MainText:    s.Prediction.StructuredFormat.MainText.Text,
		})
	}
	return predictions, nil
}

// PlaceDetails fetches name, address and coordinates for placeID.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}
	trimmed := strings.TrimSpace(placeID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "place ID is required")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL("places/"+url.PathEscape(trimmed)), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build place details request")
	}

	var apiResp struct {
		ID          string `json:"id"`
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		FormattedAddress string `json:"formattedAddress"`
		Location         *struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"location"`
	}
	if err := c.do(httpReq, placeDetailsFieldMask, "place details", &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Location == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "place location missing")
	}

	return &PlaceDetails{
		PlaceID:          apiResp.ID,
		DisplayName:      apiResp.DisplayName.Text,
		FormattedAddress: apiResp.FormattedAddress,
		Location: LatLng{
			Latitude:  apiResp.Location.Latitude,
			Longitude: apiResp.Location.Longitude,
		},
	}, nil
}

func (c *Client) do(req *http.Request, fieldMask, op string, out any) error {
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+op+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), op+" request failed")
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+op+" response")
	}
	return nil
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(c.baseURL, "/"), strings.TrimLeft(path, "/"))
}
