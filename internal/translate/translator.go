// Package translate provides machine translation and AI classification
// backends behind small interfaces.
package translate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/Veraticus/ucsname/internal/common"
)

// Translator turns text from one language into another.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
	Name() string
}

// Config selects and configures a translation provider.
type Config struct {
	Provider        string        `mapstructure:"provider"`
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	Model           string        `mapstructure:"model"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	Timeout         time.Duration `mapstructure:"timeout"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	RateLimit       int           `mapstructure:"rate_limit"`
	CacheSize       int           `mapstructure:"cache_size"`
}

// Provider names accepted by New.
const (
	ProviderNone       = "none"
	ProviderGoogle     = "google"
	ProviderLibre      = "libre"
	ProviderOpenAI     = "openai"
	ProviderZhipu      = "zhipu"
	ProviderOpenRouter = "openrouter"
)

// New creates the translator named by cfg.Provider, wrapped in a result
// cache when cfg.CacheSize is positive.
func New(ctx context.Context, cfg Config) (Translator, error) {
	var (
		t   Translator
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderNone:
		return noneTranslator{}, nil
	case ProviderGoogle:
		t, err = newGoogleTranslator(ctx, cfg)
	case ProviderLibre:
		t, err = newLibreTranslator(cfg)
	case ProviderOpenAI, ProviderZhipu, ProviderOpenRouter:
		var client *chatClient
		client, err = newChatClient(cfg)
		if err == nil {
			t = &chatTranslator{client: client}
		}
	default:
		return nil, fmt.Errorf("%w: unsupported translation provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if cfg.CacheSize > 0 {
		t = Cached(t, cfg.CacheSize, cfg.CacheTTL)
	}
	return t, nil
}

// noneTranslator disables translation. It always returns an empty string.
type noneTranslator struct{}

func (noneTranslator) Translate(context.Context, string, string, string) (string, error) {
	return "", nil
}

func (noneTranslator) Name() string { return ProviderNone }

type cachedTranslator struct {
	inner Translator
	cache *expirable.LRU[string, string]
}

// Cached wraps t with a bounded, expiring cache of successful translations.
func Cached(t Translator, size int, ttl time.Duration) Translator {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &cachedTranslator{
		inner: t,
		cache: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

func (c *cachedTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	key := from + "\x00" + to + "\x00" + text
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	v, err := c.inner.Translate(ctx, text, from, to)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, v)
	return v, nil
}

func (c *cachedTranslator) Name() string { return c.inner.Name() }

// newLimiter converts a requests-per-minute budget into a limiter. Zero
// means unlimited.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// postJSON posts body and returns the response payload. Any status other
// than 200 is an error carrying the provider's message.
func postJSON(ctx context.Context, client *http.Client, url string, body []byte, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		detail := gjson.GetBytes(raw, "error.message").String()
		if detail == "" {
			detail = gjson.GetBytes(raw, "error").String()
		}
		if detail == "" {
			detail = string(raw)
		}
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, detail)
	}
	return raw, nil
}

func timeoutOr(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}
