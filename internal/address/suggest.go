package address

import (
	"context"
	"strings"
	"unicode/utf8"

	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
	"github.com/naijagasonline/ngo-storefront/pkg/maps"
)

// MinQueryLength is the shortest query worth sending to the places API.
const MinQueryLength = 4

type placeSearcher interface {
	Search(ctx context.Context, query string, opts maps.SearchOptions) ([]maps.Place, error)
}

// Suggester turns free-text queries into address candidates.
type Suggester struct {
	places placeSearcher
	opts   maps.SearchOptions
}

func NewSuggester(places placeSearcher, region string) *Suggester {
	return &Suggester{places: places, opts: maps.SearchOptions{Region: region}}
}

// Suggest returns at most maps.MaxResults candidates. Queries shorter than
// MinQueryLength return no candidates without calling the API.
func (s *Suggester) Suggest(ctx context.Context, query string) ([]maps.Place, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []maps.Place{}, nil
	}
	if s == nil || s.places == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "place search unavailable")
	}
	places, err := s.places.Search(ctx, query, s.opts)
	if err != nil {
		return nil, err
	}
	if len(places) > maps.MaxResults {
		places = places[:maps.MaxResults]
	}
	return places, nil
}

// FromSuggestion builds a draft from an accepted candidate.
func FromSuggestion(p maps.Place, makeDefault bool) Draft {
	return Draft{
		Label:     p.Label,
		Lat:       p.Lat,
		Lng:       p.Lng,
		Details:   p.Details,
		IsDefault: makeDefault,
	}
}
