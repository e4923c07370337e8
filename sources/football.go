package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kova98/footroll.api/models"
)

const footballBaseURL = "https://v3.football.api-sports.io"

// FootballClient reads live fixtures and their events from API-Football.
type FootballClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	timezone   string
}

func NewFootballClient(httpClient *http.Client, apiKey, timezone string) *FootballClient {
	return &FootballClient{
		httpClient: httpClient,
		baseURL:    footballBaseURL,
		apiKey:     apiKey,
		timezone:   timezone,
	}
}

func (c *FootballClient) LiveFixtures(ctx context.Context) ([]models.LiveFixture, error) {
	params := url.Values{}
	params.Set("live", "all")
	if c.timezone != "" {
		params.Set("timezone", c.timezone)
	}

	var res models.FootballResponse[models.LiveFixture]
	if err := c.get(ctx, "/fixtures?"+params.Encode(), &res); err != nil {
		return nil, fmt.Errorf("fetch live fixtures: %w", err)
	}
	return res.Response, nil
}

func (c *FootballClient) FixtureEvents(ctx context.Context, fixtureID int64) ([]models.FixtureEvent, error) {
	params := url.Values{}
	params.Set("fixture", strconv.FormatInt(fixtureID, 10))

	var res models.FootballResponse[models.FixtureEvent]
	if err := c.get(ctx, "/fixtures/events?"+params.Encode(), &res); err != nil {
		return nil, fmt.Errorf("fetch events of fixture %d: %w", fixtureID, err)
	}
	return res.Response, nil
}

func (c *FootballClient) get(ctx context.Context, path string, dest interface{ UpstreamErrors() any }) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	headers := map[string]string{"x-apisports-key": c.apiKey}
	if err := getJSON(ctx, c.httpClient, "api-football", c.baseURL+path, headers, dest); err != nil {
		return err
	}

	// API-Football reports auth and quota problems with a 200 and a non empty errors field.
	if errs := dest.UpstreamErrors(); hasErrors(errs) {
		return fmt.Errorf("api-football errors: %v", errs)
	}
	return nil
}

func hasErrors(v any) bool {
	switch e := v.(type) {
	case map[string]any:
		return len(e) > 0
	case []any:
		return len(e) > 0
	case string:
		return e != ""
	default:
		return false
	}
}
