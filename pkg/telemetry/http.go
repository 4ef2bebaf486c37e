package telemetry

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/tidwall/sjson"
)

// Doer performs a HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type httpSink struct {
	endpoint string
	client   Doer
}

// NewHTTP returns Sink posting events as JSON to the endpoint.
func NewHTTP(endpoint string, client Doer) Sink {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &httpSink{
		endpoint: endpoint,
		client:   client,
	}
}

func (s *httpSink) Record(ctx context.Context, event string, metadata map[string]any) {
	if err := s.post(ctx, event, metadata); err != nil {
		logger.ContextKV(ctx, xlog.DEBUG,
			"reason", "post",
			"event", event,
			"err", err.Error(),
		)
	}
}

// Payload returns JSON payload of the event.
func Payload(event string, metadata map[string]any) (string, error) {
	ev := NewEvent(event, metadata)

	js := `{}`
	var err error
	for _, kv := range []struct {
		key string
		val any
	}{
		{"id", ev.ID},
		{"event", ev.Name},
		{"source", ev.Source},
		{"timestamp", ev.Timestamp.Format(time.RFC3339Nano)},
	} {
		js, err = sjson.Set(js, kv.key, kv.val)
		if err != nil {
			return "", errors.Wrapf(err, "unable to set %s", kv.key)
		}
	}
	if len(ev.Metadata) > 0 {
		js, err = sjson.Set(js, "metadata", ev.Metadata)
		if err != nil {
			return "", errors.Wrap(err, "unable to set metadata")
		}
	}
	return js, nil
}

func (s *httpSink) post(ctx context.Context, event string, metadata map[string]any) error {
	payload, err := Payload(event, metadata)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	r, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
		_ = r.Body.Close()
	}()

	if r.StatusCode < 200 || r.StatusCode >= 300 {
		return errors.Errorf("unexpected status code: %d", r.StatusCode)
	}
	return nil
}
