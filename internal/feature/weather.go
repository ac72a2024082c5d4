package feature

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	openWeatherEndpoint = "https://api.openweathermap.org/data/2.5/weather"
	ipLocateEndpoint    = "http://ip-api.com/json/"
)

// Weather reports current conditions through OpenWeatherMap. An empty
// location phrase means "wherever this machine is": the coordinates
// come from IP geolocation.
type Weather struct {
	APIKey string
	HTTP   *http.Client
	Logger *slog.Logger

	// endpoints are overridable for tests.
	observeEndpoint string
	locateEndpoint  string
}

func NewWeather(apiKey string, logger *slog.Logger) *Weather {
	if logger == nil {
		logger = slog.Default()
	}
	return &Weather{
		APIKey:          apiKey,
		HTTP:            &http.Client{Timeout: 15 * time.Second},
		Logger:          logger,
		observeEndpoint: openWeatherEndpoint,
		locateEndpoint:  ipLocateEndpoint,
	}
}

type weatherObservation struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Report returns one spoken sentence for the location phrase.
func (w *Weather) Report(location string) (string, error) {
	if w.APIKey == "" {
		return "", errors.New("openweathermap API key not configured")
	}

	query := url.Values{"appid": {w.APIKey}, "units": {"metric"}}
	where := location

	if location == "" || location == "here" || location == "my location" {
		lat, lon, city, err := w.locateByIP()
		if err != nil {
			return "", fmt.Errorf("locate by IP: %w", err)
		}
		query.Set("lat", fmt.Sprintf("%f", lat))
		query.Set("lon", fmt.Sprintf("%f", lon))
		where = fmt.Sprintf("your location (%s)", city)
	} else {
		query.Set("q", location)
	}

	resp, err := w.HTTP.Get(w.observeEndpoint + "?" + query.Encode())
	if err != nil {
		return "", fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Sprintf("I couldn't find weather information for %s.", where), nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather request: status %d", resp.StatusCode)
	}

	var obs weatherObservation
	if err := json.NewDecoder(resp.Body).Decode(&obs); err != nil {
		return "", fmt.Errorf("weather request: decode: %w", err)
	}
	if len(obs.Weather) == 0 {
		return "", errors.New("weather request: empty observation")
	}

	return fmt.Sprintf(
		"The weather in %s is %s with a temperature of %.1f degrees Celsius, humidity of %d percent, and wind speed of %.1f meters per second.",
		where, obs.Weather[0].Description, obs.Main.Temp, obs.Main.Humidity, obs.Wind.Speed,
	), nil
}

func (w *Weather) locateByIP() (lat, lon float64, city string, err error) {
	resp, err := w.HTTP.Get(w.locateEndpoint)
	if err != nil {
		return 0, 0, "", err
	}
	defer resp.Body.Close()

	var body struct {
		Status string  `json:"status"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
		City   string  `json:"city"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, 0, "", err
	}
	if body.Status != "success" {
		return 0, 0, "", fmt.Errorf("geolocation status %q", body.Status)
	}
	return body.Lat, body.Lon, body.City, nil
}
