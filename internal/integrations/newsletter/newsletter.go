// Package newsletter subscribes contacts to the daily affirmation mailing list.
package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

type Client struct {
	baseURL string
	apiKey  string
	listID  int64
	http    *http.Client
}

func NewClient(baseURL, apiKey, listID string) (*Client, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(listID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("newsletter: list id %q: %w", listID, err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		listID:  id,
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Subscribe adds email to the list. An address that is already a contact is
// updated in place, so re-subscribing succeeds.
func (c *Client) Subscribe(ctx context.Context, email string, attributes map[string]string) error {
	body, err := json.Marshal(map[string]any{
		"email":         email,
		"listIds":       []int64{c.listID},
		"updateEnabled": true,
		"attributes":    attributes,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/contacts", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("newsletter: subscribe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if gjson.GetBytes(raw, "code").String() == "duplicate_parameter" {
		return nil
	}
	return fmt.Errorf("newsletter: subscribe: status %d: %s", resp.StatusCode, gjson.GetBytes(raw, "message").String())
}
