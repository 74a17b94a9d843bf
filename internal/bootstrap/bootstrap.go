package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"memo/internal/classify"
	"memo/internal/config"
	"memo/internal/i18n"
	"memo/internal/logging"
	"memo/internal/memory"
	"memo/internal/orchestrator"
	"memo/internal/provider"
	"memo/internal/storage"
)

// BuildResult 与 UI 无关的构建结果，供 main 构造 TUI / REPL / MCP
// BuildResult is UI-agnostic; main uses it to construct the TUI, REPL or MCP server.
type BuildResult struct {
	Config     config.Config
	Orch       *orchestrator.Orchestrator
	Store      *memory.Store
	KV         storage.KV
	Provider   provider.Provider
	Classifier *classify.Classifier
	Lang       *i18n.I18n
	Logger     *zap.Logger
	Model      string
	// Migrated is the number of legacy notes imported at startup.
	Migrated int
}

// Build 按顺序初始化：语言、日志、存储、迁移、provider、分类器、编排器；调用方负责 defer result.Close()
// Build initializes language, logging, storage, migration, provider,
// classifier and orchestrator in that order. The caller must defer
// result.Close(). projectDir receives ./.memo/config.json on /model; empty
// disables persisting.
func Build(ctx context.Context, cfg config.Config, projectDir string) (*BuildResult, error) {
	lang := i18n.New(cfg.UI.Language)
	i18n.Init(lang.Locale())

	logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	kv, err := openKV(cfg)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	res := &BuildResult{Config: cfg, KV: kv, Lang: lang, Logger: logger, Model: cfg.Provider.Model}

	migrated, err := storage.MigrateLegacyNotes(kv)
	if err != nil {
		logger.Warn("legacy notes migration failed", zap.Error(err))
	} else if migrated > 0 {
		logger.Info("legacy notes migrated", zap.Int("count", migrated))
	}
	res.Migrated = migrated

	store, err := memory.NewStore(
		memory.NewKVPersister(kv, logger),
		memory.WithTimeFormat(lang.FormatTime),
		memory.WithLogger(logger),
	)
	if err != nil {
		res.Close()
		return nil, fmt.Errorf("init memory: %w", err)
	}
	res.Store = store

	providerClient, err := buildProvider(ctx, cfg)
	if err != nil {
		res.Close()
		return nil, err
	}
	res.Provider = providerClient
	res.Classifier = buildClassifier(cfg, providerClient, lang.Locale())

	var persistModel orchestrator.ModelPersistFunc
	if dir := strings.TrimSpace(projectDir); dir != "" {
		persistModel = func(model string) error {
			return config.WriteProviderModel(dir, model)
		}
	}
	res.Orch = orchestrator.New(providerClient, orchestrator.Options{
		Classifier:   res.Classifier,
		Store:        store,
		Lang:         lang,
		Logger:       logger,
		PersistModel: persistModel,
		SystemPrompt: cfg.Classifier.SystemPrompt,
		QuickPrompts: cfg.UI.QuickPrompts,
		APIKeyLength: len(cfg.Provider.APIKey),
	})

	logger.Info("memo started",
		zap.String("provider", providerClient.Name()),
		zap.String("model", providerClient.CurrentModel()),
		zap.String("backend", cfg.Storage.Backend),
		zap.String("locale", lang.Locale()),
		zap.Int("items", store.Snapshot().Count()))
	return res, nil
}

// Close releases storage and flushes the log.
func (r *BuildResult) Close() error {
	if r == nil {
		return nil
	}
	var err error
	if r.KV != nil {
		err = r.KV.Close()
	}
	if r.Logger != nil {
		_ = r.Logger.Sync()
	}
	return err
}
