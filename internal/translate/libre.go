package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/Veraticus/ucsname/internal/common"
)

const defaultLibreURL = "https://libretranslate.com"

type libreTranslator struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
}

func newLibreTranslator(cfg Config) (*libreTranslator, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultLibreURL
	}
	return &libreTranslator{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     cfg.APIKey,
		limiter:    newLimiter(cfg.RateLimit),
		httpClient: &http.Client{Timeout: timeoutOr(cfg.Timeout)},
	}, nil
}

func (l *libreTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter canceled: %w", err)
	}

	if from == "" {
		from = "auto"
	}
	body := map[string]string{
		"q":      text,
		"source": from,
		"target": to,
		"format": "text",
	}
	if l.apiKey != "" {
		body["api_key"] = l.apiKey
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	raw, err := postJSON(ctx, l.httpClient, l.baseURL+"/translate", jsonBody, nil)
	if err != nil {
		return "", fmt.Errorf("LibreTranslate: %w", err)
	}

	translated := gjson.GetBytes(raw, "translatedText")
	if !translated.Exists() {
		return "", fmt.Errorf("LibreTranslate: %w", common.ErrEmptyResponse)
	}
	return translated.String(), nil
}

func (l *libreTranslator) Name() string { return ProviderLibre }
