package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/Veraticus/ucsname/internal/common"
)

var defaultChatEndpoints = map[string]string{
	ProviderOpenAI:     "https://api.openai.com/v1",
	ProviderZhipu:      "https://open.bigmodel.cn/api/paas/v4",
	ProviderOpenRouter: "https://openrouter.ai/api/v1",
}

var defaultChatModels = map[string]string{
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderZhipu:      "glm-4-flash",
	ProviderOpenRouter: "openai/gpt-4o-mini",
}

// chatClient talks to any OpenAI-compatible chat completions endpoint.
type chatClient struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	provider    string
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

func newChatClient(cfg Config) (*chatClient, error) {
	provider := strings.ToLower(cfg.Provider)
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %s API key is required", common.ErrMissingConfig, provider)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultChatEndpoints[provider]
	}
	model := cfg.Model
	if model == "" {
		model = defaultChatModels[provider]
	}

	return &chatClient{
		provider:    provider,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: 0.2,
		maxTokens:   300,
		limiter:     newLimiter(cfg.RateLimit),
		httpClient: &http.Client{
			Timeout: timeoutOr(cfg.Timeout),
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// complete sends one system and one user message and returns the first
// choice's content.
func (c *chatClient) complete(ctx context.Context, system, user string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter canceled: %w", err)
	}

	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := postJSON(ctx, c.httpClient, c.baseURL+"/chat/completions", jsonBody, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("%s API: %w", c.provider, err)
	}

	choices := gjson.GetBytes(body, "choices")
	if len(choices.Array()) == 0 {
		return "", fmt.Errorf("no completion choices returned: %w", common.ErrEmptyResponse)
	}
	return strings.TrimSpace(choices.Get("0.message.content").String()), nil
}

type chatTranslator struct {
	client *chatClient
}

const translateSystemPrompt = "You translate short sound effect file names. Reply with the translation only, no quotes or commentary."

func (t *chatTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	if from == "" {
		from = "auto"
	}
	prompt := fmt.Sprintf("Translate from %s to %s:\n%s", from, to, text)
	out, err := t.client.complete(ctx, translateSystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	out = strings.Trim(out, "\"'` \n")
	if out == "" {
		return "", fmt.Errorf("%s translation: %w", t.client.provider, common.ErrEmptyResponse)
	}
	return out, nil
}

func (t *chatTranslator) Name() string { return t.client.provider }
