package translate

import (
	"context"
	"fmt"
	"html"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gtranslate "google.golang.org/api/translate/v2"

	"github.com/Veraticus/ucsname/internal/common"
)

type googleTranslator struct {
	service *gtranslate.Service
}

// newGoogleTranslator authenticates with an API key or, when
// CredentialsFile is set, a service account key.
func newGoogleTranslator(ctx context.Context, cfg Config, extra ...option.ClientOption) (*googleTranslator, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		jsonKey, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, gtranslate.CloudTranslationScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service account key: %w", err)
		}
		opts = append(opts, option.WithHTTPClient(jwtConfig.Client(ctx)))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	default:
		return nil, fmt.Errorf("%w: google translation needs an API key or credentials file", common.ErrMissingConfig)
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	opts = append(opts, extra...)

	svc, err := gtranslate.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translate service: %w", err)
	}
	return &googleTranslator{service: svc}, nil
}

func (g *googleTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	call := g.service.Translations.List([]string{text}, to).Format("text").Context(ctx)
	if from != "" && from != "auto" {
		call = call.Source(from)
	}
	resp, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("google translate: %w", err)
	}
	if len(resp.Translations) == 0 {
		return "", fmt.Errorf("google translate: %w", common.ErrEmptyResponse)
	}
	return html.UnescapeString(resp.Translations[0].TranslatedText), nil
}

func (g *googleTranslator) Name() string { return ProviderGoogle }
