package crimefeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/safemap/safemap/internal/geo"
	"github.com/safemap/safemap/internal/incident"
)

// mockHTTPClient delegates to the httptest server's client.
type mockHTTPClient struct {
	client *http.Client
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.client.Do(req)
}

func testBox() geo.BBox {
	return geo.BBox{West: -90.31, South: 38.635, East: -90.28, North: 38.655}
}

func TestClient_FetchIncidents_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/crimes" {
			t.Errorf("expected path /crimes, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("west") != "-90.31" || q.Get("south") != "38.635" {
			t.Errorf("unexpected sw params: %s, %s", q.Get("west"), q.Get("south"))
		}
		if q.Get("east") != "-90.28" || q.Get("north") != "38.655" {
			t.Errorf("unexpected ne params: %s, %s", q.Get("east"), q.Get("north"))
		}

		w.Header().Set("Content-Type", "application/geo+json")
		w.Write([]byte(`{
			"type": "FeatureCollection",
			"features": [
				{
					"type": "Feature",
					"properties": {"severity": 500},
					"geometry": {"type": "Point", "coordinates": [-90.2940248, 38.6521540]}
				},
				{
					"type": "Feature",
					"properties": {},
					"geometry": {"type": "Point", "coordinates": [-90.29, 38.64]}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: &mockHTTPClient{client: server.Client()},
		Logger:     zerolog.Nop(),
	})

	incidents, err := client.FetchIncidents(context.Background(), testBox())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(incidents) != 2 {
		t.Fatalf("expected 2 incidents, got %d", len(incidents))
	}

	// GeoJSON positions are [lon, lat]; the client must swap them.
	first := incidents[0]
	if first.Lat != 38.6521540 || first.Lon != -90.2940248 {
		t.Errorf("unexpected first incident position: %+v", first)
	}
	if first.Severity != 500 {
		t.Errorf("expected severity 500, got %f", first.Severity)
	}

	// Missing severity defaults to 0.
	if incidents[1].Severity != 0 {
		t.Errorf("expected default severity 0, got %f", incidents[1].Severity)
	}
}

func TestClient_FetchIncidents_SkipsMalformedGeometry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
			"type": "FeatureCollection",
			"features": [
				{"type": "Feature", "properties": {"severity": 1}, "geometry": {"type": "Point", "coordinates": []}},
				{"type": "Feature", "properties": {"severity": 2}, "geometry": {"type": "Point", "coordinates": [-90.29, 38.64]}}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: &mockHTTPClient{client: server.Client()},
		Logger:     zerolog.Nop(),
	})

	incidents, err := client.FetchIncidents(context.Background(), testBox())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(incidents) != 1 {
		t.Fatalf("expected 1 incident, got %d", len(incidents))
	}
	if incidents[0].Severity != 2 {
		t.Errorf("expected severity 2, got %f", incidents[0].Severity)
	}
}

func TestClient_FetchIncidents_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: &mockHTTPClient{client: server.Client()},
		Logger:     zerolog.Nop(),
	})

	_, err := client.FetchIncidents(context.Background(), testBox())
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var incErr *incident.Error
	if !errors.As(err, &incErr) {
		t.Fatalf("expected incident.Error, got %T", err)
	}
	if !errors.Is(incErr.Err, incident.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", incErr.Err)
	}
}

func TestClient_FetchIncidents_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: &mockHTTPClient{client: server.Client()},
		Logger:     zerolog.Nop(),
	})

	_, err := client.FetchIncidents(context.Background(), testBox())
	if !errors.Is(err, incident.ErrFetchFailed) {
		t.Errorf("expected ErrFetchFailed, got %v", err)
	}
}

func TestClient_FetchIncidents_InvalidBBox(t *testing.T) {
	client := NewClient(ClientConfig{
		BaseURL: "http://localhost:0",
		Logger:  zerolog.Nop(),
	})

	_, err := client.FetchIncidents(context.Background(), geo.NewBBox())
	if !errors.Is(err, incident.ErrFetchFailed) {
		t.Errorf("expected ErrFetchFailed for empty bbox, got %v", err)
	}
}
