package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/pkg/apperror"
)

const defaultGoogleEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

const (
	MsgNoLocation  = "Could not find location for the specified address."
	MsgUnavailable = "Could not reach the geocoding service, please try again later."
	MsgTimeout     = "Geocoding the address timed out, please try again later."
)

// GoogleGeocoder resolves addresses with the Google Geocoding API.
type GoogleGeocoder struct {
	APIKey   string
	Endpoint string
	Client   *http.Client
}

func NewGoogleGeocoder(apiKey string, timeout time.Duration) *GoogleGeocoder {
	return &GoogleGeocoder{
		APIKey:   apiKey,
		Endpoint: defaultGoogleEndpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location entity.Location `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (g *GoogleGeocoder) Resolve(ctx context.Context, address string) (entity.Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return entity.Location{}, apperror.Geocode(http.StatusUnprocessableEntity, MsgNoLocation, errors.New("empty address"))
	}
	endpoint := g.Endpoint
	if endpoint == "" {
		endpoint = defaultGoogleEndpoint
	}
	client := g.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return entity.Location{}, apperror.Geocode(http.StatusInternalServerError, MsgUnavailable, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return entity.Location{}, apperror.Geocode(http.StatusGatewayTimeout, MsgTimeout, err)
		}
		return entity.Location{}, apperror.Geocode(http.StatusBadGateway, MsgUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entity.Location{}, apperror.Geocode(http.StatusBadGateway, MsgUnavailable, fmt.Errorf("geocoder responded %s", resp.Status))
	}
	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return entity.Location{}, apperror.Geocode(http.StatusBadGateway, MsgUnavailable, err)
	}

	switch body.Status {
	case "OK":
		if len(body.Results) == 0 {
			return entity.Location{}, apperror.Geocode(http.StatusUnprocessableEntity, MsgNoLocation, errors.New("no results"))
		}
		return body.Results[0].Geometry.Location, nil
	case "ZERO_RESULTS", "INVALID_REQUEST":
		return entity.Location{}, apperror.Geocode(http.StatusUnprocessableEntity, MsgNoLocation, fmt.Errorf("geocoder status %s", body.Status))
	default:
		return entity.Location{}, apperror.Geocode(http.StatusBadGateway, MsgUnavailable, fmt.Errorf("geocoder status %s: %s", body.Status, body.ErrorMessage))
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
