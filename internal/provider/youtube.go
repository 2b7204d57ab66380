package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

// videoIDPattern recognizes the usual sharing, watch and embed link
// forms: youtu.be/<id>, /v/<id>, /e/<id>, /embed/<id>, watch?v=<id>
// (with or without leading query parameters). The id segment is always
// 11 characters.
var videoIDPattern = regexp.MustCompile(`(?:youtu\.be/|youtube(?:-nocookie)?\.com/(?:embed/|v/|e/|watch\?(?:[^#\s]*&)?v=))([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`)

// ExtractVideoID pulls the 11-character video identifier out of a link.
// It does no network validation; any string without a recognizable id
// segment reports false.
func ExtractVideoID(link string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(link)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Client looks up video metadata through the oEmbed endpoint, which
// needs no API key. Used only as a UI convenience for suggesting
// titles; playback never depends on it.
type Client struct {
	oembedURL string
	http      *http.Client
}

func NewClient(oembedURL string) *Client {
	if oembedURL == "" {
		oembedURL = "https://www.youtube.com/oembed"
	}
	return &Client{
		oembedURL: oembedURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// VideoInfo is the subset of oEmbed metadata the service exposes.
type VideoInfo struct {
	VideoID    string `json:"videoId"`
	Title      string `json:"title"`
	AuthorName string `json:"authorName,omitempty"`
}

type oembedResponse struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

// Lookup resolves a video link to its id and title. The id comes from
// the link itself; the title is fetched best-effort from oEmbed.
func (c *Client) Lookup(ctx context.Context, link string) (*VideoInfo, error) {
	videoID, ok := ExtractVideoID(link)
	if !ok {
		return nil, fmt.Errorf("unrecognized video link")
	}

	val := url.Values{}
	val.Set("url", "https://www.youtube.com/watch?v="+videoID)
	val.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.oembedURL+"?"+val.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oembed status %d", resp.StatusCode)
	}

	var body oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	return &VideoInfo{
		VideoID:    videoID,
		Title:      body.Title,
		AuthorName: body.AuthorName,
	}, nil
}
