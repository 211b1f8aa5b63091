package model

// StrategyStage says which component consumes a strategy entry.
type StrategyStage string

const (
	// StageMatcher entries are candidate-generating methods inside the term matcher.
	StageMatcher StrategyStage = "matcher"
	// StageClassifier entries are steps of the classifier fallback chain.
	StageClassifier StrategyStage = "classifier"
)

// StrategyConfig is one user-configurable entry of the strategy registry.
type StrategyConfig struct {
	Params    map[string]float64 `json:"params,omitempty" toml:"params,omitempty"`
	Key       string             `json:"key" toml:"key"`
	Stage     StrategyStage      `json:"stage" toml:"stage"`
	Threshold float64            `json:"threshold" toml:"threshold"`
	Priority  int                `json:"priority" toml:"priority"`
	Enabled   bool               `json:"enabled" toml:"enabled"`
}

// Param returns a strategy parameter or the fallback when it is unset.
func (s StrategyConfig) Param(name string, fallback float64) float64 {
	if v, ok := s.Params[name]; ok {
		return v
	}
	return fallback
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s StrategyConfig) Clone() StrategyConfig {
	c := s
	if s.Params != nil {
		c.Params = make(map[string]float64, len(s.Params))
		for k, v := range s.Params {
			c.Params[k] = v
		}
	}
	return c
}
