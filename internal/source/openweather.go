package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"Stratus/internal/normalize"
)

// OpenWeather fetches current-weather payloads from the OpenWeatherMap API,
// one city per request, API key carried as the appid query parameter.
type OpenWeather struct {
	apiKey  string
	baseURL string
	doer    *doer
}

func NewOpenWeather(client *http.Client, apiKey, baseURL string, interval time.Duration, retry RetryPolicy) *OpenWeather {
	return &OpenWeather{
		apiKey:  apiKey,
		baseURL: baseURL,
		doer:    newDoer(client, "openweather", interval, retry),
	}
}

func (s *OpenWeather) Name() string { return "openweathermap" }

func (s *OpenWeather) Fetch(ctx context.Context, city string) ([]normalize.Payload, error) {
	build := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("appid", s.apiKey)
		values.Set("units", "metric")
		u := fmt.Sprintf("%s/weather?%s", s.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := s.doer.get(ctx, build)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	p := normalize.Payload(body)
	// Minimal shape check: a current-weather body always carries the
	// condition array.
	if _, ok := p.Slice("weather"); !ok {
		return nil, fmt.Errorf("%w: no weather condition field", ErrMalformed)
	}
	return []normalize.Payload{p}, nil
}
