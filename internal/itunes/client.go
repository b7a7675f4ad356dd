// Package itunes searches the iTunes Search API for album artwork, the
// secondary provider in the cover resolution chain.
package itunes

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/httpclient"
	"github.com/cesargomez89/tunegrab/internal/logger"
)

const searchURL = "https://itunes.apple.com/search"

type Client struct {
	http    *httpclient.Client
	baseURL string
	log     *logger.Logger
}

func NewClient(http *httpclient.Client, log *logger.Logger) *Client {
	return &Client{
		http:    http,
		baseURL: searchURL,
		log:     log.WithComponent("itunes"),
	}
}

type searchResponse struct {
	ResultCount int `json:"resultCount"`
	Results     []struct {
		ArtworkURL100  string `json:"artworkUrl100"`
		CollectionName string `json:"collectionName"`
		TrackName      string `json:"trackName"`
	} `json:"results"`
}

// AlbumArtwork searches album-level artwork for artist + album.
func (c *Client) AlbumArtwork(ctx context.Context, artist, album string) (string, error) {
	return c.artwork(ctx, artist+" "+album, "album")
}

// TrackArtwork searches track-level artwork for artist + title.
func (c *Client) TrackArtwork(ctx context.Context, artist, title string) (string, error) {
	return c.artwork(ctx, artist+" "+title, "song")
}

func (c *Client) artwork(ctx context.Context, term, entity string) (string, error) {
	query := url.Values{}
	query.Set("term", term)
	query.Set("entity", entity)
	query.Set("limit", "1")

	var resp searchResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"?"+query.Encode(), nil, &resp); err != nil {
		return "", err
	}

	if resp.ResultCount == 0 || len(resp.Results) == 0 || resp.Results[0].ArtworkURL100 == "" {
		return "", fmt.Errorf("%w: no itunes artwork for %q", domain.ErrNoSearchResults, term)
	}

	return upscaleArtwork(resp.Results[0].ArtworkURL100), nil
}

// upscaleArtwork swaps the 100x100 thumbnail suffix for the 600x600 variant
// the CDN also serves.
func upscaleArtwork(artworkURL string) string {
	return strings.Replace(artworkURL, "100x100bb", "600x600bb", 1)
}
