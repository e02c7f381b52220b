// Package loki pushes event records to Grafana Loki as labeled log streams.
package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/avast/retry-go/v5"

	"nbpulse/internal/event"
)

// PushRequest is the Loki push API request body (v1).
type PushRequest struct {
	Streams []Stream `json:"streams"`
}

// Stream is a single stream with labels and log entries.
type Stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"` // each entry is [timestamp_ns, log_line]
}

// labelSanitize replaces characters that are invalid in Loki label names/values.
// Loki labels: name must match [a-zA-Z_:][a-zA-Z0-9_:]*, value can be any string
// but we avoid problematic chars. The dot stays so file names keep their extension.
var labelSanitize = regexp.MustCompile(`[^a-zA-Z0-9_\-:.]`)

// Sink is a backend.Backend pushing each record as one Loki log entry.
type Sink struct {
	baseURL string
	job     string
	client  *http.Client
}

// New returns a Loki sink for the given base URL (e.g. http://localhost:3100).
func New(baseURL string) (*Sink, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("loki: base URL is required")
	}
	return &Sink{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		job:     "nbpulse",
		client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Track pushes the JSON-encoded record with event_name and notebook labels.
// Transient push failures are retried with backoff before being reported.
func (s *Sink) Track(ctx context.Context, rec *event.Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("loki: marshal record: %w", err)
	}
	labels := map[string]string{"event_name": string(rec.Name)}
	if nb := rec.Properties["notebook_name"]; nb != "" {
		labels["notebook"] = nb
	}
	ts := rec.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return s.Push(ctx, ts, string(line), labels)
}

// Push sends a single log line to Loki. labels are added to the stream next
// to the fixed job label; invalid label characters are replaced.
func (s *Sink) Push(ctx context.Context, timestamp time.Time, line string, labels map[string]string) error {
	streamLabels := make(map[string]string, len(labels)+1)
	streamLabels["job"] = s.job
	for k, v := range labels {
		sanitized := labelSanitize.ReplaceAllString(strings.TrimSpace(v), "_")
		if sanitized != "" {
			streamLabels[k] = sanitized
		}
	}
	body := PushRequest{
		Streams: []Stream{{
			Stream: streamLabels,
			Values: [][]string{{fmt.Sprintf("%d", timestamp.UnixNano()), line}},
		}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
	)
	return r.Do(func() error {
		return s.push(ctx, payload)
	})
}

func (s *Sink) push(ctx context.Context, payload []byte) error {
	url := s.baseURL + "/loki/api/v1/push"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("loki: push returned %s", resp.Status)
	}
	return nil
}

func (s *Sink) Close() error { return nil }
