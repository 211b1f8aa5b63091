package pos

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

	"github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/Veraticus/ucsname/internal/common"
	"github.com/Veraticus/ucsname/internal/model"
)

// RemoteConfig configures a RemoteAnalyzer.
type RemoteConfig struct {
	Endpoint          string        `mapstructure:"endpoint"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	FailureThreshold  uint32        `mapstructure:"failure_threshold"`
	OpenTimeout       time.Duration `mapstructure:"open_timeout"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
}

// RemoteAnalyzer asks an HTTP tagging service for parts of speech.
//
// The service accepts POST {"text": "..."} and answers with
// {"words": [{"word": "door", "pos": "NOUN"}, ...]}. Universal, Penn and
// single-letter tag sets are understood. Any failure yields an empty result.
type RemoteAnalyzer struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]model.WeightedWord]
	retry      common.RetryOptions
	cfg        RemoteConfig
	weights    Weights
}

// NewRemoteAnalyzer creates a remote analyzer and verifies the service
// answers, so that Select can fall through to a local analyzer.
func NewRemoteAnalyzer(ctx context.Context, cfg RemoteConfig, weights Weights) (*RemoteAnalyzer, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("remote analyzer: %w: endpoint", common.ErrMissingConfig)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 2
	}

	a := &RemoteAnalyzer{
		cfg:        cfg,
		weights:    weights,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		retry: common.RetryOptions{
			MaxAttempts:  cfg.MaxAttempts,
			InitialDelay: 50 * time.Millisecond,
			MaxDelay:     cfg.Timeout / 2,
		},
	}
	a.breaker = gobreaker.NewCircuitBreaker[[]model.WeightedWord](gobreaker.Settings{
		Name:    "pos-remote",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			common.LogWarn("Circuit breaker state change", common.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	if _, err := a.request(ctx, "test"); err != nil {
		return nil, fmt.Errorf("remote analyzer: %w: %w", common.ErrProviderUnavailable, err)
	}
	return a, nil
}

// Analyze implements Analyzer.
func (a *RemoteAnalyzer) Analyze(text string) []model.WeightedWord {
	if strings.TrimSpace(text) == "" {
		return []model.WeightedWord{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Timeout)
	defer cancel()

	// One breaker failure per exhausted retry sequence.
	words, err := a.breaker.Execute(func() ([]model.WeightedWord, error) {
		var out []model.WeightedWord
		retryErr := common.WithRetry(ctx, func() error {
			var reqErr error
			out, reqErr = a.request(ctx, text)
			return reqErr
		}, a.retry)
		return out, retryErr
	})
	if err != nil {
		if !errors.Is(err, gobreaker.ErrOpenState) {
			common.LogDebug("Remote part-of-speech analysis failed", common.Fields{"error": err.Error()})
		}
		return []model.WeightedWord{}
	}
	return words
}

func (a *RemoteAnalyzer) request(ctx context.Context, text string) ([]model.WeightedWord, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, common.StatusError(resp.StatusCode, fmt.Errorf("tagging service returned status %d", resp.StatusCode))
	}
	if !gjson.ValidBytes(raw) {
		return nil, common.Permanent(fmt.Errorf("tagging service returned invalid JSON"))
	}

	var words []model.WeightedWord
	gjson.GetBytes(raw, "words").ForEach(func(_, w gjson.Result) bool {
		word := strings.ToLower(strings.TrimSpace(w.Get("word").String()))
		if word == "" {
			return true
		}
		p := ParseTag(w.Get("pos").String())
		words = append(words, model.WeightedWord{
			Word:         word,
			PartOfSpeech: p,
			Weight:       a.weights.For(p),
		})
		return true
	})
	return Finalize(words), nil
}

// ParseTag maps a tag from a common tag set to a part of speech.
func ParseTag(tag string) model.PartOfSpeech {
	t := strings.ToUpper(strings.TrimSpace(tag))
	switch {
	case t == "NOUN" || t == "PROPN" || strings.HasPrefix(t, "NN") || t == "N" || t == "NR" || t == "NZ":
		return model.Noun
	case t == "VERB" || strings.HasPrefix(t, "VB") || t == "V" || t == "VN":
		return model.Verb
	case t == "ADJ" || strings.HasPrefix(t, "JJ") || t == "A" || t == "AN":
		return model.Adjective
	case t == "ADV" || strings.HasPrefix(t, "RB") || t == "D" || t == "AD":
		return model.Adverb
	default:
		return model.Other
	}
}
