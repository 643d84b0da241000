// Package responder calls the generative response backend that produces the
// assistant's chat replies.
package responder

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

	"github.com/AnshRaj112/mindhaven-backend/internal/metrics"
	"github.com/tidwall/gjson"
)

// ErrorKind classifies a failed backend call.
type ErrorKind string

const (
	ErrTimeout     ErrorKind = "timeout"
	ErrUnavailable ErrorKind = "unavailable"
	ErrBadStatus   ErrorKind = "bad_status"
	ErrMalformed   ErrorKind = "malformed"
)

// Result is either a reply (OK) or a failure kind. Err carries the cause.
type Result struct {
	OK        bool
	ReplyText string
	Emotion   string
	Kind      ErrorKind
	Err       error
}

// Backend produces a reply for one user message. Implementations must not retry.
type Backend interface {
	Respond(ctx context.Context, text string) Result
}

// Reply paths tried in order. The last one matches a Gemini-style payload.
var replyPaths = []string{
	"reply",
	"response",
	"text",
	"message",
	"candidates.0.content.parts.0.text",
}

var emotionPaths = []string{
	"emotion.label",
	"emotion",
	"sentiment",
}

// Client posts {"message": text} to a remote inference endpoint.
type Client struct {
	url  string
	http *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:  strings.TrimRight(url, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Respond(ctx context.Context, text string) Result {
	start := time.Now()
	res := c.respond(ctx, text)
	outcome := "ok"
	if !res.OK {
		outcome = string(res.Kind)
	}
	metrics.RecordResponderCall(outcome, time.Since(start))
	return res
}

func (c *Client) respond(ctx context.Context, text string) Result {
	body, err := json.Marshal(map[string]string{"message": text})
	if err != nil {
		return failure(ErrMalformed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return failure(ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return failure(ErrTimeout, err)
		}
		return failure(ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return failure(ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failure(ErrBadStatus, fmt.Errorf("responder returned status %d", resp.StatusCode))
	}

	return Parse(raw)
}

// Parse extracts reply text and emotion from a backend payload.
func Parse(raw []byte) Result {
	if !gjson.ValidBytes(raw) {
		return failure(ErrMalformed, errors.New("responder returned invalid JSON"))
	}
	doc := gjson.ParseBytes(raw)

	reply := firstString(doc, replyPaths)
	if strings.TrimSpace(reply) == "" {
		return failure(ErrMalformed, errors.New("responder payload has no reply text"))
	}
	return Result{OK: true, ReplyText: reply, Emotion: firstString(doc, emotionPaths)}
}

func firstString(doc gjson.Result, paths []string) string {
	for _, p := range paths {
		if v := doc.Get(p); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

func failure(kind ErrorKind, err error) Result {
	return Result{Kind: kind, Err: err}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
