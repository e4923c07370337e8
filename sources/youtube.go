package sources

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kova98/footroll.api/data"
	"github.com/kova98/footroll.api/models"
)

const youTubeBaseURL = "https://www.googleapis.com/youtube/v3"

type YouTubeClient struct {
	httpClient        *http.Client
	baseURL           string
	apiKey            string
	regionCode        string
	relevanceLanguage string
}

func NewYouTubeClient(httpClient *http.Client, apiKey, regionCode, relevanceLanguage string) *YouTubeClient {
	return &YouTubeClient{
		httpClient:        httpClient,
		baseURL:           youTubeBaseURL,
		apiKey:            apiKey,
		regionCode:        regionCode,
		relevanceLanguage: relevanceLanguage,
	}
}

// Search queries embeddable, syndicated videos ordered by relevance.
func (c *YouTubeClient) Search(ctx context.Context, p SearchParams) (SearchPage, error) {
	if c.apiKey == "" {
		return SearchPage{}, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("order", "relevance")
	params.Set("q", p.Query)
	params.Set("videoEmbeddable", "true")
	params.Set("videoSyndicated", "true")
	if p.MaxResults > 0 {
		params.Set("maxResults", strconv.Itoa(p.MaxResults))
	}
	if !p.PublishedAfter.IsZero() {
		params.Set("publishedAfter", p.PublishedAfter.UTC().Format(time.RFC3339))
	}
	if p.PageToken != "" {
		params.Set("pageToken", p.PageToken)
	}
	if c.regionCode != "" {
		params.Set("regionCode", c.regionCode)
	}
	if c.relevanceLanguage != "" {
		params.Set("relevanceLanguage", c.relevanceLanguage)
	}

	var res models.YouTubeSearchResponse
	if err := getJSON(ctx, c.httpClient, "youtube", c.baseURL+"/search?"+params.Encode(), nil, &res); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			statusErr.Body = orDefault(apiErrorMessage(statusErr.raw), statusErr.Body)
		}
		return SearchPage{}, err
	}

	items := make([]data.SearchResult, 0, len(res.Items))
	for _, item := range res.Items {
		if item.ID.VideoID == "" {
			continue
		}
		items = append(items, toVideoResult(item))
	}

	return SearchPage{Items: items, NextToken: res.NextPageToken}, nil
}

// toVideoResult normalizes a search item. Snippet text arrives HTML escaped.
func toVideoResult(item models.YouTubeSearchItem) data.SearchResult {
	s := item.Snippet
	result := data.SearchResult{
		ExternalID: item.ID.VideoID,
		Title:      orDefault(html.UnescapeString(s.Title), "Untitled"),
		Label:      orDefault(html.UnescapeString(s.ChannelTitle), "Unknown channel"),
		URL:        "https://www.youtube.com/watch?v=" + item.ID.VideoID,
	}

	if published, err := time.Parse(time.RFC3339, s.PublishedAt); err == nil {
		result.PublishedAt = published
	}

	switch {
	case s.Thumbnails.Medium != nil && s.Thumbnails.Medium.URL != "":
		result.Thumbnail = s.Thumbnails.Medium.URL
	case s.Thumbnails.Default != nil:
		result.Thumbnail = s.Thumbnails.Default.URL
	}

	return result
}

// apiErrorMessage extracts error.message from a Data API error payload.
func apiErrorMessage(body []byte) string {
	var res models.YouTubeErrorResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return ""
	}
	return res.Error.Message
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
