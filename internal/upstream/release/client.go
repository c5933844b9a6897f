// Package release fetches and normalizes the latest desktop build metadata
// from the GitHub releases API.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/vaporshelf/edge/internal/utils"
)

// Info is the normalized release shape served to the site.
type Info struct {
	URL           string `json:"url"`
	Version       string `json:"version"`
	Name          string `json:"name"`
	FileSize      string `json:"fileSize"`
	FileSizeBytes int64  `json:"fileSizeBytes"`
	DownloadCount int64  `json:"downloadCount"`
	PublishedAt   string `json:"publishedAt"`
}

// latestRelease mirrors the subset of the GitHub "latest release" payload we
// consume.
type latestRelease struct {
	TagName     string  `json:"tag_name"`
	Name        string  `json:"name"`
	HTMLURL     string  `json:"html_url"`
	PublishedAt string  `json:"published_at"`
	Assets      []asset `json:"assets"`
}

type asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
	DownloadCount      int64  `json:"download_count"`
}

// Client calls the releases API for one configured repository.
type Client struct {
	http        *http.Client
	baseURL     string // ex: https://api.github.com
	repo        string // ex: vaporshelf/vaporshelf
	assetSuffix string // ex: -setup.exe
	fallbackURL string // generic releases page used when no asset matches
}

func NewClient(httpClient *http.Client, baseURL, repo, assetSuffix, fallbackURL string) *Client {
	return &Client{
		http:        httpClient,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		repo:        repo,
		assetSuffix: assetSuffix,
		fallbackURL: fallbackURL,
	}
}

// Fallback returns the degraded Info used when the upstream is unavailable.
func (c *Client) Fallback() Info {
	return Info{URL: c.fallbackURL}
}

// Latest fetches the most recent release and normalizes it.
func (c *Client) Latest(ctx context.Context) (Info, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.baseURL, c.repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return Info{}, fmt.Errorf("failed to create release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Info{}, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Info{}, fmt.Errorf("release upstream returned status %d", resp.StatusCode)
	}

	var payload latestRelease
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Info{}, fmt.Errorf("failed to decode release payload: %w", err)
	}

	return normalize(payload, c.assetSuffix, c.fallbackURL), nil
}

// normalize selects the first asset whose filename ends with suffix and maps
// the payload onto Info. Without a match it degrades to the fallback URL with
// zeroed numeric fields, keeping the tag and title.
func normalize(payload latestRelease, suffix, fallbackURL string) Info {
	info := Info{
		URL:         fallbackURL,
		Version:     payload.TagName,
		Name:        payload.Name,
		PublishedAt: formatPublished(payload.PublishedAt),
	}

	for _, a := range payload.Assets {
		if suffix != "" && !strings.HasSuffix(strings.ToLower(a.Name), strings.ToLower(suffix)) {
			continue
		}
		info.URL = a.BrowserDownloadURL
		info.FileSizeBytes = a.Size
		info.FileSize = humanize.Bytes(uint64(a.Size))
		info.DownloadCount = a.DownloadCount
		break
	}

	return info
}

// formatPublished re-renders the upstream timestamp in RFC3339.
// Unparseable values pass through as-is (display only).
func formatPublished(raw string) string {
	if raw == "" {
		return ""
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return ts.UTC().Format(time.RFC3339)
}
