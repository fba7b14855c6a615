package ai

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// ModelInfo is catalog metadata used for context checks and cost hints.
// Prices are illustrative.
type ModelInfo struct {
	Name          string  `yaml:"name"`
	Provider      string  `yaml:"provider"`
	ContextTokens int     `yaml:"context_tokens"`
	InputPerK     float64 `yaml:"input_per_k"`  // USD per 1K input tokens
	OutputPerK    float64 `yaml:"output_per_k"` // USD per 1K output tokens
}

var (
	catalogMu sync.RWMutex
	catalog   = map[string]ModelInfo{
		"gpt-4o-mini":                 {Name: "gpt-4o-mini", Provider: ProviderOpenAI, ContextTokens: 128000, InputPerK: 0.00015, OutputPerK: 0.0006},
		"gpt-4o":                      {Name: "gpt-4o", Provider: ProviderOpenAI, ContextTokens: 128000, InputPerK: 0.0025, OutputPerK: 0.01},
		"openai/gpt-4o-mini":          {Name: "openai/gpt-4o-mini", Provider: ProviderOpenRouter, ContextTokens: 128000, InputPerK: 0.00015, OutputPerK: 0.0006},
		"anthropic/claude-3.5-sonnet": {Name: "anthropic/claude-3.5-sonnet", Provider: ProviderOpenRouter, ContextTokens: 200000, InputPerK: 0.003, OutputPerK: 0.015},
		"deepseek/deepseek-r1:free":   {Name: "deepseek/deepseek-r1:free", Provider: ProviderOpenRouter, ContextTokens: 128000},
		"claude-3-5-haiku-latest":     {Name: "claude-3-5-haiku-latest", Provider: ProviderAnthropic, ContextTokens: 200000, InputPerK: 0.0008, OutputPerK: 0.004},
		"claude-sonnet-4-5":           {Name: "claude-sonnet-4-5", Provider: ProviderAnthropic, ContextTokens: 200000, InputPerK: 0.003, OutputPerK: 0.015},
		"llama3.1:8b-instruct":        {Name: "llama3.1:8b-instruct", Provider: ProviderOllama, ContextTokens: 8192},
		"qwen2.5:7b-instruct":         {Name: "qwen2.5:7b-instruct", Provider: ProviderOllama, ContextTokens: 32768},
	}
	defaultModels = map[string]string{
		ProviderOpenAI:     "gpt-4o-mini",
		ProviderOpenRouter: "openai/gpt-4o-mini",
		ProviderAnthropic:  "claude-3-5-haiku-latest",
		ProviderOllama:     "llama3.1:8b-instruct",
		ProviderLocal:      "llama3.1:8b-instruct",
	}
)

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string { return defaultModels[provider] }

// LookupModel returns ModelInfo and ok flag.
func LookupModel(name string) (ModelInfo, bool) {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	mi, ok := catalog[name]
	return mi, ok
}

// EstimateCostUSD estimates total cost in USD for given tokens using model pricing.
// If the model is unknown, returns 0 and ok=false.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (float64, bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	in := float64(promptTokens) / 1000.0 * mi.InputPerK
	out := float64(completionTokens) / 1000.0 * mi.OutputPerK
	return in + out, true
}

// LoadCatalogFile reads a YAML map of model name to ModelInfo.
func LoadCatalogFile(path string) (map[string]ModelInfo, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]ModelInfo
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse model catalog %s: %w", path, err)
	}
	for k, v := range m {
		if v.Name == "" {
			v.Name = k
			m[k] = v
		}
	}
	return m, nil
}

// MergeCatalog merges/overrides entries in the in-memory catalog.
func MergeCatalog(m map[string]ModelInfo) {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	for k, v := range m {
		catalog[k] = v
	}
}

// Models returns catalog entries sorted by provider then name. An empty
// provider lists every entry.
func Models(provider string) []ModelInfo {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	var out []ModelInfo
	for _, mi := range catalog {
		if provider == "" || mi.Provider == provider {
			out = append(out, mi)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Name < out[j].Name
	})
	return out
}
