// Package translate converts text between languages through the Google
// translate web endpoint.
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
)

const googleEndpoint = "https://translate.googleapis.com/translate_a/single"

type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// GoogleTranslator talks to the free web endpoint with source language set
// to auto. Failures are meant to be caught at the step boundary and degraded
// to empty output.
type GoogleTranslator struct {
	endpoint string
	client   *http.Client
}

func NewGoogleTranslator() *GoogleTranslator {
	return &GoogleTranslator{
		endpoint: googleEndpoint,
		client:   &http.Client{Timeout: 20 * time.Second},
	}
}

// Translate returns text in the target language. Empty input short-circuits
// to empty output without touching the network.
func (g *GoogleTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", "auto")
	query.Set("tl", target)
	query.Set("dt", "t")
	query.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate error: status %d: %s", resp.StatusCode, body)
	}

	return parseTranslation(body)
}

// parseTranslation walks the endpoint's nested-array payload:
// [[["<translated>","<source>",...],...],...]. Each segment contributes its
// first element to the result.
func parseTranslation(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode translation: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("decode translation: empty payload")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("decode translation segments: %w", err)
	}

	var sb strings.Builder
	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(segment[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}
	return sb.String(), nil
}
