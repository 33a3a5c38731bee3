package normalize

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func weatherPayload() Payload {
	return Payload{
		"id":   float64(1264527),
		"name": "Chennai",
		"sys":  map[string]any{"country": "IN"},
		"weather": []any{
			map[string]any{"main": "Clouds", "description": "scattered clouds", "icon": "03d"},
		},
		"main": map[string]any{
			"temp":       28.5,
			"feels_like": 32.1,
			"temp_min":   28.5,
			"temp_max":   28.5,
			"humidity":   float64(74),
			"pressure":   float64(1008),
		},
		"visibility": float64(6000),
		"wind":       map[string]any{"speed": 3.6, "deg": float64(210)},
		"coord":      map[string]any{"lat": 13.0878, "lon": 80.2785},
		"dt":         float64(1700000000),
	}
}

func TestWeatherDocumentMapping(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := weatherPayload()

	doc, err := WeatherDocument(p, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.CityName != "Chennai" {
		t.Errorf("city name = %q, want Chennai", doc.CityName)
	}
	if doc.CityID == nil || *doc.CityID != 1264527 {
		t.Errorf("city id = %v, want 1264527", doc.CityID)
	}
	if doc.Country != "IN" {
		t.Errorf("country = %q, want IN", doc.Country)
	}
	if doc.Temperature.Current == nil || *doc.Temperature.Current != 28.5 {
		t.Errorf("current temperature = %v, want 28.5", doc.Temperature.Current)
	}
	if doc.Conditions == nil || doc.Conditions.Main != "Clouds" {
		t.Errorf("conditions = %+v, want main Clouds", doc.Conditions)
	}
	if doc.Wind == nil || doc.Wind.Direction == nil || *doc.Wind.Direction != 210 {
		t.Errorf("wind = %+v, want direction 210", doc.Wind)
	}
	if doc.Coordinates == nil || doc.Coordinates.Latitude == nil || *doc.Coordinates.Latitude != 13.0878 {
		t.Errorf("coordinates = %+v, want lat 13.0878", doc.Coordinates)
	}
	if doc.APITimestamp == nil || doc.APITimestamp.Unix() != 1700000000 {
		t.Errorf("api timestamp = %v, want unix 1700000000", doc.APITimestamp)
	}
	if !doc.IngestionTimestamp.Equal(at) {
		t.Errorf("ingestion timestamp = %v, want %v", doc.IngestionTimestamp, at)
	}
}

// The untouched payload must survive under raw_data: that is the audit
// guarantee that lets transform bugs be fixed by reprocessing stored docs.
func TestWeatherDocumentKeepsRawData(t *testing.T) {
	p := weatherPayload()
	doc, err := WeatherDocument(p, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(doc.RawData, p) {
		t.Errorf("raw_data diverged from the original payload")
	}
}

func TestWeatherDocumentDeterministic(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a, err := WeatherDocument(weatherPayload(), at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := WeatherDocument(weatherPayload(), at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same payload and frozen clock produced different documents")
	}
}

func TestWeatherDocumentValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(Payload)
	}{
		{"missing city name", func(p Payload) { delete(p, "name") }},
		{"empty city name", func(p Payload) { p["name"] = "" }},
		{"missing main block", func(p Payload) { delete(p, "main") }},
		{"missing current temperature", func(p Payload) {
			p["main"] = map[string]any{"humidity": float64(70)}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := weatherPayload()
			tt.mutate(p)
			_, err := WeatherDocument(p, time.Now().UTC())
			if !errors.Is(err, ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestWeatherDocumentOmitsAbsentOptionals(t *testing.T) {
	p := Payload{
		"name":    "Nowhere",
		"main":    map[string]any{"temp": 15.0},
		"weather": []any{},
	}
	doc, err := WeatherDocument(p, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.CityID != nil || doc.Conditions != nil || doc.Wind != nil ||
		doc.Coordinates != nil || doc.APITimestamp != nil {
		t.Errorf("absent optional groups must stay nil: %+v", doc)
	}
	if doc.Temperature.FeelsLike != nil || doc.Humidity != nil {
		t.Errorf("absent optional fields must stay nil: %+v", doc)
	}
}
