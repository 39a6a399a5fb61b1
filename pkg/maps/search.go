package maps

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// MaxResults caps how many predictions Search resolves.
const MaxResults = 5

// Place is a resolved search hit ready to become a saved address.
type Place struct {
	Label   string  `json:"label"`
	Details string  `json:"details,omitempty"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	PlaceID string  `json:"place_id,omitempty"`
}

// SearchOptions narrows a Search call.
type SearchOptions struct {
	Region   string
	Language string
}

// Search autocompletes query, then resolves the first MaxResults predictions
// concurrently. Predictions whose details cannot be fetched are dropped; the
// call only fails when autocomplete fails or ctx is done.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]Place, error) {
	req := AutocompleteRequest{Input: strings.TrimSpace(query)}
	if region := strings.TrimSpace(opts.Region); region != "" {
		req.IncludedRegionCodes = []string{strings.ToUpper(region)}
	}
	if lang := strings.TrimSpace(opts.Language); lang != "" {
		req.LanguageCode = lang
	}

	predictions, err := c.Autocomplete(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(predictions) > MaxResults {
		predictions = predictions[:MaxResults]
	}

	resolved := make([]*Place, len(predictions))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range predictions {
		g.Go(func() error {
			details, err := c.PlaceDetails(gctx, p.PlaceID)
			if err != nil {
				// one bad prediction should not hide the rest
				return gctx.Err()
			}
			resolved[i] = toPlace(req.Input, p, details)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(resolved))
	for _, place := range resolved {
		if place != nil {
			places = append(places, *place)
		}
	}
	return places, nil
}

func toPlace(query string, p Prediction, details *PlaceDetails) *Place {
	label := firstNonEmpty(details.DisplayName, p.MainText, query)
	placeID := firstNonEmpty(details.PlaceID, p.PlaceID)
	return &Place{
		Label:   label,
		Details: firstNonEmpty(details.FormattedAddress, p.Description),
		Lat:     details.Location.Latitude,
		Lng:     details.Location.Longitude,
		PlaceID: placeID,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
