// Package media talks to the hosted real-time media gateway that carries
// audio for group sessions. The backend only brokers rooms and join tokens.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Provider is the capability surface group sessions need from a media SDK.
type Provider interface {
	CreateRoom(ctx context.Context, roomID string) error
	// Join returns a client token for the media SDK. Empty when the provider
	// issues none.
	Join(ctx context.Context, roomID, userID string) (string, error)
	Leave(ctx context.Context, roomID, userID string) error
	ToggleAudio(ctx context.Context, roomID, userID string, muted bool) error
	CloseRoom(ctx context.Context, roomID string) error
}

// Nop is used when no gateway is configured; sessions then carry text and
// presence events only.
type Nop struct{}

func (Nop) CreateRoom(context.Context, string) error { return nil }
func (Nop) Join(context.Context, string, string) (string, error) { return "", nil }
func (Nop) Leave(context.Context, string, string) error { return nil }
func (Nop) ToggleAudio(context.Context, string, string, bool) error { return nil }
func (Nop) CloseRoom(context.Context, string) error { return nil }

// Gateway is a REST client for the media gateway.
type Gateway struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewGateway(baseURL, apiKey string) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *Gateway) CreateRoom(ctx context.Context, roomID string) error {
	_, err := g.post(ctx, "/rooms", map[string]any{"name": roomID})
	return err
}

func (g *Gateway) Join(ctx context.Context, roomID, userID string) (string, error) {
	raw, err := g.post(ctx, "/rooms/"+url.PathEscape(roomID)+"/participants", map[string]any{"identity": userID})
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(raw, "token").String(), nil
}

func (g *Gateway) Leave(ctx context.Context, roomID, userID string) error {
	path := "/rooms/" + url.PathEscape(roomID) + "/participants/" + url.PathEscape(userID)
	_, err := g.do(ctx, http.MethodDelete, path, nil)
	return err
}

func (g *Gateway) ToggleAudio(ctx context.Context, roomID, userID string, muted bool) error {
	path := "/rooms/" + url.PathEscape(roomID) + "/participants/" + url.PathEscape(userID) + "/audio"
	_, err := g.post(ctx, path, map[string]any{"muted": muted})
	return err
}

func (g *Gateway) CloseRoom(ctx context.Context, roomID string) error {
	_, err := g.do(ctx, http.MethodDelete, "/rooms/"+url.PathEscape(roomID), nil)
	return err
}

func (g *Gateway) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return g.do(ctx, http.MethodPost, path, body)
}

func (g *Gateway) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("media: %s %s: status %d: %s", method, path, resp.StatusCode, gjson.GetBytes(raw, "error").String())
	}
	return raw, nil
}
