package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/tidwall/gjson"

	"github.com/Veraticus/ucsname/internal/common"
	"github.com/Veraticus/ucsname/internal/model"
)

const aiSystemPrompt = "You are a sound effects librarian who files audio by the Universal Category System (UCS). " +
	"You MUST respond with ONLY a valid JSON object with the keys catID, catShort, category, category_zh, subCategory and subCategory_zh. " +
	"Do not include any explanatory text or markdown formatting."

// AIClassifier asks a chat model for the UCS category of a filename.
// Results are cached; the caller validates the returned category id.
type AIClassifier struct {
	client     *chatClient
	cache      *expirable.LRU[string, model.AIResult]
	categories []string
}

// NewAIClassifier creates a classifier for an OpenAI-compatible provider.
// categories lists the valid CatIDs offered to the model.
func NewAIClassifier(cfg Config, categories []string) (*AIClassifier, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI, ProviderZhipu, ProviderOpenRouter:
	default:
		return nil, fmt.Errorf("%w: AI classification needs a chat provider, got %q", common.ErrInvalidConfig, cfg.Provider)
	}
	client, err := newChatClient(cfg)
	if err != nil {
		return nil, err
	}

	size := cfg.CacheSize
	if size <= 0 {
		size = 512
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AIClassifier{
		client:     client,
		cache:      expirable.NewLRU[string, model.AIResult](size, nil, ttl),
		categories: categories,
	}, nil
}

// Classify returns the model's suggestion for filename.
func (a *AIClassifier) Classify(ctx context.Context, filename string) (*model.AIResult, error) {
	key := strings.ToLower(strings.TrimSpace(filename))
	if key == "" {
		return nil, fmt.Errorf("empty filename: %w", common.ErrEmptyResponse)
	}
	if cached, ok := a.cache.Get(key); ok {
		return &cached, nil
	}

	content, err := a.client.complete(ctx, aiSystemPrompt, a.prompt(filename))
	if err != nil {
		return nil, fmt.Errorf("AI classification failed: %w", err)
	}
	result, err := parseAIResult(content)
	if err != nil {
		return nil, err
	}

	a.cache.Add(key, *result)
	common.LogDebug("AI classification", common.Fields{
		"filename": filename,
		"cat_id":   result.CatID,
	})
	return result, nil
}

func (a *AIClassifier) prompt(filename string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Classify this sound effect file name: %s\n", filename)
	if len(a.categories) > 0 {
		b.WriteString("Choose catID from: ")
		b.WriteString(strings.Join(a.categories, ", "))
		b.WriteString("\n")
	}
	return b.String()
}

// parseAIResult extracts the JSON object from a chat reply, tolerating
// markdown fences and surrounding prose.
func parseAIResult(content string) (*model.AIResult, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in AI response: %w", common.ErrEmptyResponse)
	}
	raw := content[start : end+1]
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("invalid JSON in AI response: %w", common.ErrEmptyResponse)
	}

	var result model.AIResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	if result.CatID == "" {
		return nil, fmt.Errorf("no catID in AI response: %w", common.ErrEmptyResponse)
	}
	if result.CatShort == "" {
		result.CatShort = model.DeriveCategoryShort(result.CatID)
	}
	return &result, nil
}
