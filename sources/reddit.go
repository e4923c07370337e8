package sources

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kova98/footroll.api/data"
	"github.com/kova98/footroll.api/models"
)

const redditBaseURL = "https://www.reddit.com"

type RedditClient struct {
	egress  *EgressPool
	baseURL string
}

func NewRedditClient(egress *EgressPool) *RedditClient {
	return &RedditClient{egress: egress, baseURL: redditBaseURL}
}

// Search returns the newest link posts. Reddit has no published-after filter, so
// posts older than p.PublishedAfter (or without a timestamp) are dropped here.
func (c *RedditClient) Search(ctx context.Context, p SearchParams) (SearchPage, error) {
	params := url.Values{}
	params.Set("q", p.Query)
	params.Set("sort", "new")
	params.Set("type", "link")
	params.Set("restrict_sr", "false")
	if p.MaxResults > 0 {
		params.Set("limit", strconv.Itoa(p.MaxResults))
	}
	if p.PageToken != "" {
		params.Set("after", p.PageToken)
	}

	// Make the request look like a real browser to avoid blocks
	headers := map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "application/json",
		"Accept-Language": "en-US,en;q=0.9",
	}

	client, host := c.egress.Next()
	var listing models.RedditListing
	err := getJSON(ctx, client, "reddit", c.baseURL+"/search.json?"+params.Encode(), headers, &listing)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusTooManyRequests {
			c.egress.MarkRateLimited(host)
		}
		return SearchPage{}, err
	}

	items := make([]data.SearchResult, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		result, ok := c.toPostResult(child.Data)
		if !ok {
			continue
		}
		if !p.PublishedAfter.IsZero() && (result.PublishedAt.IsZero() || result.PublishedAt.Before(p.PublishedAfter)) {
			continue
		}
		items = append(items, result)
	}

	return SearchPage{Items: items, NextToken: listing.Data.After}, nil
}

func (c *RedditClient) toPostResult(post models.RedditPost) (data.SearchResult, bool) {
	var permalink string
	if post.Permalink != "" {
		permalink = redditBaseURL + post.Permalink
	}

	result := data.SearchResult{
		ExternalID: post.ID,
		Title:      orDefault(post.Title, "Untitled"),
		Label:      orDefault(post.SubredditNamePrefixed, "r/unknown"),
		Author:     orDefault(post.Author, "unknown"),
		Permalink:  permalink,
		URL:        firstNonEmpty(post.URLOverriddenByDest, post.URL, permalink),
	}

	if post.CreatedUTC > 0 {
		sec, frac := math.Modf(post.CreatedUTC)
		result.PublishedAt = time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}
	if strings.HasPrefix(post.Thumbnail, "http") {
		result.Thumbnail = post.Thumbnail
	}

	return result, result.ExternalID != "" && result.URL != ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
