// Package googlefit reads daily activity aggregates from the Google Fit REST API.
package googlefit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ErrUnauthorized means the stored access token was rejected.
var ErrUnauthorized = errors.New("googlefit: access token rejected")

const (
	typeSteps     = "com.google.step_count.delta"
	typeCalories  = "com.google.calories.expended"
	typeHeartRate = "com.google.heart_rate.bpm"
)

// Summary is one day of aggregated activity.
type Summary struct {
	Steps     int64
	Calories  float64
	HeartRate float64 // average bpm, zero when no samples
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// DailySummary aggregates the UTC calendar day date (YYYY-MM-DD).
func (c *Client) DailySummary(ctx context.Context, accessToken, date string) (Summary, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return Summary{}, fmt.Errorf("googlefit: bad date %q: %w", date, err)
	}
	start := day.UTC()
	end := start.Add(24 * time.Hour)

	body, err := json.Marshal(map[string]any{
		"aggregateBy": []map[string]string{
			{"dataTypeName": typeSteps},
			{"dataTypeName": typeCalories},
			{"dataTypeName": typeHeartRate},
		},
		"bucketByTime":    map[string]int64{"durationMillis": end.Sub(start).Milliseconds()},
		"startTimeMillis": start.UnixMilli(),
		"endTimeMillis":   end.UnixMilli(),
	})
	if err != nil {
		return Summary{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/me/dataset:aggregate", bytes.NewReader(body))
	if err != nil {
		return Summary{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Summary{}, fmt.Errorf("googlefit: aggregate: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Summary{}, err
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Summary{}, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		msg := gjson.GetBytes(raw, "error.message").String()
		return Summary{}, fmt.Errorf("googlefit: aggregate status %d: %s", resp.StatusCode, msg)
	}

	return ParseAggregate(raw)
}

// ParseAggregate sums an aggregate response. Datasets are identified by the
// data type embedded in their dataSourceId.
func ParseAggregate(raw []byte) (Summary, error) {
	if !gjson.ValidBytes(raw) {
		return Summary{}, errors.New("googlefit: invalid JSON")
	}

	var s Summary
	var hrSum float64
	var hrCount int

	gjson.GetBytes(raw, "bucket").ForEach(func(_, bucket gjson.Result) bool {
		bucket.Get("dataset").ForEach(func(_, ds gjson.Result) bool {
			source := ds.Get("dataSourceId").String()
			ds.Get("point").ForEach(func(_, pt gjson.Result) bool {
				switch {
				case strings.Contains(source, typeSteps):
					s.Steps += pt.Get("value.0.intVal").Int()
				case strings.Contains(source, typeCalories):
					s.Calories += pt.Get("value.0.fpVal").Float()
				case strings.Contains(source, typeHeartRate):
					if avg := pt.Get("value.0.fpVal"); avg.Exists() {
						hrSum += avg.Float()
						hrCount++
					}
				}
				return true
			})
			return true
		})
		return true
	})

	if hrCount > 0 {
		s.HeartRate = hrSum / float64(hrCount)
	}
	return s, nil
}
