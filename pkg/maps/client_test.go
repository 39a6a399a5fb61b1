package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient("test-key", WithBaseURL("http://maps.test/v1"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("   "); err == nil {
		t.Fatal("expected error for blank api key")
	}
}

func TestClientAutocompleteRequest(t *testing.T) {
	const expectedURL = "http://maps.test/v1/places:autocomplete"
	respBody := `{"suggestions":[{"placePrediction":{"placeId":"place_123","text":{"text":"12 Allen Avenue, Ikeja"},"structuredFormat":{"mainText":{"text":"12 Allen Avenue"}}}}]}`

	var capturedURL string
	var capturedHeaders http.Header

	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedHeaders = req.Header.Clone()

		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		var payload map[string]any
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		if payload["input"] != "12 allen avenue" {
			t.Fatalf("unexpected input %q", payload["input"])
		}
		return jsonResponse(http.StatusOK, respBody), nil
	})

	result, err := client.Autocomplete(context.Background(), AutocompleteRequest{
		Input:               "12 allen avenue",
		IncludedRegionCodes: []string{"NG"},
	})
	if err != nil {
		t.Fatalf("autocomplete: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedHeaders.Get("X-Goog-Api-Key") != "test-key" {
		t.Fatalf("api key header missing")
	}
	if capturedHeaders.Get("X-Goog-FieldMask") != autocompleteFieldMask {
		t.Fatalf("unexpected field mask %q", capturedHeaders.Get("X-Goog-FieldMask"))
	}
	if len(result) != 1 || result[0].PlaceID != "place_123" || result[0].MainText != "12 Allen Avenue" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestClientPlaceDetailsRequest(t *testing.T) {
	const expectedURL = "http://maps.test/v1/places/place_123"
	respBody := `{"id":"place_123","displayName":{"text":"Computer Village"},"formattedAddress":"Ikeja, Lagos","location":{"latitude":6.59,"longitude":3.34}}`

	var capturedURL, capturedMask string
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedMask = req.Header.Get("X-Goog-FieldMask")
		return jsonResponse(http.StatusOK, respBody), nil
	})

	details, err := client.PlaceDetails(context.Background(), "place_123")
	if err != nil {
		t.Fatalf("place details: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedMask != placeDetailsFieldMask {
		t.Fatalf("unexpected field mask %q", capturedMask)
	}
	if details.DisplayName != "Computer Village" || details.FormattedAddress != "Ikeja, Lagos" {
		t.Fatalf("unexpected details %+v", details)
	}
	if details.Location.Latitude != 6.59 || details.Location.Longitude != 3.34 {
		t.Fatalf("unexpected location %+v", details.Location)
	}
}

func TestClientNon200IsDependencyError(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusForbidden, `{"error":"denied"}`), nil
	})
	_, err := client.PlaceDetails(context.Background(), "place_123")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if _, err := client.PlaceDetails(context.Background(), " "); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank place id, got %v", err)
	}
}

func TestSearchCapsAndDropsUnresolvable(t *testing.T) {
	var suggestions []string
	for i := 1; i <= 7; i++ {
		suggestions = append(suggestions, fmt.Sprintf(`{"placePrediction":{"placeId":"p%d","text":{"text":"Place %d, Lagos"},"structuredFormat":{"mainText":{"text":"Place %d"}}}}`, i, i, i))
	}
	autocompleteBody := `{"suggestions":[` + strings.Join(suggestions, ",") + `]}`

	var detailCalls atomic.Int32
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if strings.HasSuffix(req.URL.Path, "places:autocomplete") {
			return jsonResponse(http.StatusOK, autocompleteBody), nil
		}
		detailCalls.Add(1)
		id := strings.TrimPrefix(req.URL.Path, "/v1/places/")
		switch id {
		case "p2":
			return jsonResponse(http.StatusInternalServerError, "boom"), nil
		case "p3":
			return jsonResponse(http.StatusOK, `{"id":"p3","formattedAddress":"No location"}`), nil
		case "p4":
			return jsonResponse(http.StatusOK, `{"id":"p4","location":{"latitude":6.5,"longitude":3.3}}`), nil
		default:
			return jsonResponse(http.StatusOK, fmt.Sprintf(`{"id":%q,"displayName":{"text":"Name %s"},"formattedAddress":"Addr %s","location":{"latitude":6.4,"longitude":3.4}}`, id, id, id)), nil
		}
	})

	places, err := client.Search(context.Background(), "lekki", SearchOptions{Region: "ng"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := detailCalls.Load(); got != MaxResults {
		t.Fatalf("expected %d detail calls, got %d", MaxResults, got)
	}
	if len(places) != 3 {
		t.Fatalf("expected 3 resolved places, got %+v", places)
	}
	if places[0].PlaceID != "p1" || places[0].Label != "Name p1" || places[0].Details != "Addr p1" {
		t.Fatalf("unexpected first place %+v", places[0])
	}
	// p4 has no display name or address: fall back to the prediction text
	if places[1].Label != "Place 4" || places[1].Details != "Place 4, Lagos" {
		t.Fatalf("unexpected fallback place %+v", places[1])
	}
	if places[2].PlaceID != "p5" {
		t.Fatalf("expected order preserved, got %+v", places[2])
	}
}

func TestSearchCanceledContext(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return nil, req.Context().Err()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Search(ctx, "lekki", SearchOptions{}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
