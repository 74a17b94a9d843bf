package bootstrap

import (
	"context"
	"fmt"

	"memo/internal/classify"
	"memo/internal/config"
	"memo/internal/contextmgr"
	"memo/internal/defaults"
	"memo/internal/provider"
	"memo/internal/storage"
)

func openKV(cfg config.Config) (storage.KV, error) {
	layout, err := storage.NewLayout(cfg.Storage.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	kv, err := storage.Open(cfg.Storage.Backend, layout)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return kv, nil
}

func buildProvider(ctx context.Context, cfg config.Config) (provider.Provider, error) {
	client, err := provider.New(ctx, provider.Config{
		Kind:      cfg.Provider.Kind,
		BaseURL:   cfg.Provider.BaseURL,
		APIKey:    cfg.Provider.APIKey,
		Model:     cfg.Provider.Model,
		TimeoutMS: cfg.Provider.TimeoutMS,
	})
	if err != nil {
		return nil, fmt.Errorf("init provider: %w", err)
	}
	return client, nil
}

// buildClassifier wires the router and, in full-history mode, a token
// window sized by classifier.history_token_limit.
func buildClassifier(cfg config.Config, p provider.Provider, locale string) *classify.Classifier {
	opts := classify.Options{
		Provider:     p,
		Router:       classify.NewRouter(cfg.Classifier.QueryPhrases),
		SystemPrompt: defaults.SystemPrompt(locale, cfg.Classifier.SystemPrompt),
		MaxTokens:    cfg.Provider.MaxTokens,
		History:      cfg.Classifier.History,
	}
	if cfg.Classifier.History == classify.HistoryFull {
		opts.Window = contextmgr.Window{
			Counter: contextmgr.NewTokenizerForModel(cfg.Provider.Model),
			Budget:  cfg.Classifier.HistoryTokenLimit,
		}
	}
	return classify.New(opts)
}
