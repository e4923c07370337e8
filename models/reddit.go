package models

type RedditListing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data RedditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type RedditPost struct {
	ID                    string  `json:"id"`
	Title                 string  `json:"title"`
	Author                string  `json:"author"`
	SubredditNamePrefixed string  `json:"subreddit_name_prefixed"`
	Permalink             string  `json:"permalink"`
	URL                   string  `json:"url"`
	URLOverriddenByDest   string  `json:"url_overridden_by_dest"`
	Thumbnail             string  `json:"thumbnail"`
	CreatedUTC            float64 `json:"created_utc"`
}
