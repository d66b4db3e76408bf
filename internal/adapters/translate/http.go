// Package translate implements the app.Translator contract against the
// public gtx translation endpoint.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/rs/zerolog/log"
)

const DefaultEndpoint = "https://translate.googleapis.com/translate_a/single"

// HTTPTranslator calls the gtx single-translation endpoint. Any failure is
// returned to the caller, which absorbs it per recipient.
type HTTPTranslator struct {
	endpoint string
	client   *http.Client
}

func NewHTTPTranslator(endpoint string, timeout time.Duration) *HTTPTranslator {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &HTTPTranslator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (t *HTTPTranslator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", detectSource(text))
	q.Set("tl", targetLanguage)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	out, err := parseSegments(body)
	if err != nil {
		return "", err
	}
	log.Debug().Str("module", "adapters.translate").Str("target", targetLanguage).Int("len", len(out)).Msg("translated")
	return out, nil
}

// parseSegments walks the gtx response shape [[["<dst>","<src>",...],...],...]
// and concatenates the translated segments.
func parseSegments(body []byte) (string, error) {
	var payload []any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("translate: decode response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("translate: empty response")
	}
	segments, ok := payload[0].([]any)
	if !ok {
		return "", fmt.Errorf("translate: unexpected response shape")
	}

	var b strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			b.WriteString(s)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("translate: no segments in response")
	}
	return b.String(), nil
}

// detectSource hints the source language to the endpoint; unreliable
// detections fall back to auto.
func detectSource(text string) string {
	info := whatlanggo.Detect(text)
	if code := info.Lang.Iso6391(); code != "" && info.IsReliable() {
		return code
	}
	return "auto"
}
