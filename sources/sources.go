package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/kova98/footroll.api/data"
)

var ErrMissingAPIKey = errors.New("missing api key")

type SearchParams struct {
	Query          string
	PublishedAfter time.Time
	MaxResults     int
	PageToken      string
}

// SearchPage is one page of normalized results and the opaque token of the next page.
type SearchPage struct {
	Items     []data.SearchResult
	NextToken string
}

// StatusError is returned for non 2xx upstream responses. Body is shortened for
// logging; raw keeps what was read for sources that decode their error payload.
type StatusError struct {
	Source string
	Code   int
	Body   string
	raw    []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Source, e.Code, e.Body)
}

func getJSON(ctx context.Context, client *http.Client, source, url string, headers map[string]string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", source, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Source: source, Code: resp.StatusCode, Body: truncate(string(body), 300), raw: body}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s response: %w", source, err)
	}

	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
