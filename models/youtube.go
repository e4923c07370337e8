package models

type YouTubeSearchResponse struct {
	NextPageToken string              `json:"nextPageToken"`
	Items         []YouTubeSearchItem `json:"items"`
}

type YouTubeSearchItem struct {
	ID struct {
		Kind    string `json:"kind"`
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		PublishedAt  string `json:"publishedAt"`
		Title        string `json:"title"`
		ChannelTitle string `json:"channelTitle"`
		Thumbnails   struct {
			Default *YouTubeThumbnail `json:"default"`
			Medium  *YouTubeThumbnail `json:"medium"`
		} `json:"thumbnails"`
	} `json:"snippet"`
}

type YouTubeThumbnail struct {
	URL string `json:"url"`
}

type YouTubeErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
