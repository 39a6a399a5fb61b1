package address

import (
	"context"
	"errors"
	"testing"

	"github.com/naijagasonline/ngo-storefront/pkg/maps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	calls  int
	places []maps.Place
	err    error
	opts   maps.SearchOptions
}

func (f *fakeSearcher) Search(_ context.Context, _ string, opts maps.SearchOptions) ([]maps.Place, error) {
	f.calls++
	f.opts = opts
	return f.places, f.err
}

func TestSuggestSkipsShortQueries(t *testing.T) {
	searcher := &fakeSearcher{}
	s := NewSuggester(searcher, "NG")

	got, err := s.Suggest(context.Background(), " Ike ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, searcher.calls)
}

func TestSuggestCapsResults(t *testing.T) {
	places := make([]maps.Place, 7)
	for i := range places {
		places[i] = maps.Place{Label: "Lekki", PlaceID: string(rune('a' + i))}
	}
	searcher := &fakeSearcher{places: places}
	s := NewSuggester(searcher, "NG")

	got, err := s.Suggest(context.Background(), "Lekki Phase 1")
	require.NoError(t, err)
	assert.Len(t, got, maps.MaxResults)
	assert.Equal(t, "NG", searcher.opts.Region)
}

func TestSuggestPropagatesErrors(t *testing.T) {
	s := NewSuggester(&fakeSearcher{err: errors.New("quota")}, "NG")
	_, err := s.Suggest(context.Background(), "Ikeja GRA")
	assert.Error(t, err)
}

func TestFromSuggestionFeedsBook(t *testing.T) {
	book := newTestBook(t, nil)
	draft := FromSuggestion(maps.Place{Label: "Ikeja City Mall", Details: "194 Obafemi Awolowo Way, Ikeja", Lat: 6.61, Lng: 3.35}, false)
	a, err := book.Add(draft)
	require.NoError(t, err)
	assert.True(t, a.IsDefault)
	assert.Equal(t, "194 Obafemi Awolowo Way, Ikeja", a.Text())
	assert.Equal(t, 6.61, a.Lat)
}
