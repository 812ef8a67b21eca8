package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Translator performs a single-string translation between two languages.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// ServiceError indicates the remote translation endpoint was unreachable,
// answered with a non-success status, or returned an unusable body. It is
// retryable from the caller's point of view; no retries happen here.
type ServiceError struct {
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("translation service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("translation service call failed: %v", e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// HTTPTranslator calls a LibreTranslate-compatible endpoint: one POST per
// string, no retry, no caching.
type HTTPTranslator struct {
	endpoint string
	client   *http.Client
}

// NewHTTPTranslator creates a client for the remote translation endpoint
func NewHTTPTranslator(endpoint string, timeout time.Duration) *HTTPTranslator {
	return &HTTPTranslator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type translateRequest struct {
	Text       string `json:"q"`
	SourceLang string `json:"source"`
	TargetLang string `json:"target"`
	Format     string `json:"format"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate performs one round trip to the translation endpoint.
func (t *HTTPTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	body, err := json.Marshal(translateRequest{
		Text:       text,
		SourceLang: sourceLang,
		TargetLang: targetLang,
		Format:     "text",
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode translation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build translation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", &ServiceError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ServiceError{StatusCode: resp.StatusCode}
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &ServiceError{Err: fmt.Errorf("failed to decode translation response: %w", err)}
	}
	if out.TranslatedText == "" {
		return "", &ServiceError{Err: fmt.Errorf("translation response missing translatedText")}
	}

	return out.TranslatedText, nil
}
