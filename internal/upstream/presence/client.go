// Package presence looks up developer presence from a Lanyard-compatible API.
package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/vaporshelf/edge/internal/utils"
)

// Identity is one tracked roster member from the site data file.
type Identity struct {
	ID   string
	Name string
}

// Lanyard is the normalized presence of a single identity.
type Lanyard struct {
	Status    string `json:"status"` // online | idle | dnd | offline
	Activity  string `json:"activity,omitempty"`
	Listening string `json:"listening,omitempty"`
}

// Developer is one roster entry as served to the site. Lanyard is nil when
// that identity's upstream lookup failed; siblings are unaffected.
type Developer struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Lanyard *Lanyard `json:"lanyard"`
}

// lanyardEnvelope mirrors the upstream response shape.
type lanyardEnvelope struct {
	Success bool        `json:"success"`
	Data    lanyardData `json:"data"`
}

type lanyardData struct {
	DiscordStatus      string     `json:"discord_status"`
	Activities         []activity `json:"activities"`
	ListeningToSpotify bool       `json:"listening_to_spotify"`
	Spotify            *spotify   `json:"spotify"`
}

type activity struct {
	Type  int    `json:"type"`
	Name  string `json:"name"`
	State string `json:"state"`
}

type spotify struct {
	Song   string `json:"song"`
	Artist string `json:"artist"`
}

const activityTypePlaying = 0

// Client calls the presence API per identity.
type Client struct {
	http    *http.Client
	baseURL string // ex: https://api.lanyard.rest/v1
}

func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Lookup fetches and normalizes the presence of one identity.
func (c *Client) Lookup(ctx context.Context, id string) (*Lanyard, error) {
	url := fmt.Sprintf("%s/users/%s", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create presence request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch presence for %s: %w", id, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("presence upstream returned status %d for %s", resp.StatusCode, id)
	}

	var envelope lanyardEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode presence payload for %s: %w", id, err)
	}
	if !envelope.Success {
		return nil, fmt.Errorf("presence upstream reported failure for %s", id)
	}

	return mapLanyard(envelope.Data), nil
}

// mapLanyard flattens the upstream payload into the site shape.
func mapLanyard(data lanyardData) *Lanyard {
	l := &Lanyard{Status: normalizeStatus(data.DiscordStatus)}

	for _, a := range data.Activities {
		if a.Type != activityTypePlaying || a.Name == "" {
			continue
		}
		l.Activity = a.Name
		if a.State != "" {
			l.Activity = a.Name + " (" + a.State + ")"
		}
		break
	}

	if data.ListeningToSpotify && data.Spotify != nil && data.Spotify.Song != "" {
		l.Listening = data.Spotify.Song
		if data.Spotify.Artist != "" {
			l.Listening = data.Spotify.Song + " by " + data.Spotify.Artist
		}
	}

	return l
}

func normalizeStatus(status string) string {
	switch status {
	case "online", "idle", "dnd":
		return status
	default:
		return "offline"
	}
}
