package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type ProviderConfig struct {
	// Kind 选择后端：anthropic / openai / gemini
	// Kind selects the backend: anthropic, openai or gemini.
	Kind      string   `json:"kind" yaml:"kind"`
	BaseURL   string   `json:"base_url" yaml:"base_url"`
	Model     string   `json:"model" yaml:"model"`
	Models    []string `json:"models" yaml:"models"`
	APIKey    string   `json:"api_key" yaml:"api_key"`
	TimeoutMS int      `json:"timeout_ms" yaml:"timeout_ms"`
	MaxTokens int      `json:"max_tokens" yaml:"max_tokens"`
}

type ClassifierConfig struct {
	// History 发送给模型的对话范围：latest 只发本轮，full 发送完整对话
	// History is "latest" (only the contextual turn) or "full" (the
	// conversation so far, trimmed to HistoryTokenLimit).
	History           string   `json:"history" yaml:"history"`
	HistoryTokenLimit int      `json:"history_token_limit" yaml:"history_token_limit"`
	QueryPhrases      []string `json:"query_phrases" yaml:"query_phrases"`
	SystemPrompt      string   `json:"system_prompt" yaml:"system_prompt"`
}

type StorageConfig struct {
	BaseDir string `json:"base_dir" yaml:"base_dir"`
	// Backend 为 sqlite / badger / file
	Backend string `json:"backend" yaml:"backend"`
}

type UIConfig struct {
	Language     string   `json:"language" yaml:"language"`
	QuickPrompts []string `json:"quick_prompts" yaml:"quick_prompts"`
	// Mode is auto, tui or repl.
	Mode string `json:"mode" yaml:"mode"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file" yaml:"file"`
}

type Config struct {
	Provider   ProviderConfig   `json:"provider" yaml:"provider"`
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier"`
	Storage    StorageConfig    `json:"storage" yaml:"storage"`
	UI         UIConfig         `json:"ui" yaml:"ui"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

type fileConfig struct {
	Provider   *ProviderConfig   `json:"provider" yaml:"provider"`
	Classifier *ClassifierConfig `json:"classifier" yaml:"classifier"`
	Storage    *StorageConfig    `json:"storage" yaml:"storage"`
	UI         *UIConfig         `json:"ui" yaml:"ui"`
	Log        *LogConfig        `json:"log" yaml:"log"`
}

func Default() Config {
	return Config{
		Provider: ProviderConfig{
			Kind:      DefaultProviderKind,
			TimeoutMS: DefaultProviderTimeoutMS,
			MaxTokens: DefaultProviderMaxTokens,
		},
		Classifier: ClassifierConfig{
			History:           HistoryLatest,
			HistoryTokenLimit: DefaultHistoryTokenLimit,
		},
		Storage: StorageConfig{
			BaseDir: "~/.memo",
			Backend: "sqlite",
		},
		UI:  UIConfig{Mode: "auto"},
		Log: LogConfig{Level: "info"},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	for _, globalPath := range globalConfigPaths() {
		if err := mergeFromFile(&cfg, globalPath); err != nil {
			return Config{}, err
		}
	}

	resolvedPath := strings.TrimSpace(path)
	if resolvedPath == "" {
		resolvedPath = strings.TrimSpace(os.Getenv("MEMO_CONFIG_PATH"))
	}
	if resolvedPath == "" {
		resolvedPath = findProjectConfigPath()
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	return applyEnv(cfg)
}

func globalConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	dir := filepath.Join(home, ".memo")
	return []string{
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.yml"),
		filepath.Join(dir, "config.json"),
		filepath.Join(dir, "config.jsonc"),
	}
}

func findProjectConfigPath() string {
	candidates := []string{
		"memo.config.json",
		"memo.config.jsonc",
		".memo/config.json",
		".memo/config.jsonc",
		".memo/config.yaml",
		".memo/config.yml",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	var fileCfg fileConfig
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return fmt.Errorf("parse config %q: %w", resolved, err)
		}
	default:
		cleaned := stripJSONComments(data)
		if err := json.Unmarshal(cleaned, &fileCfg); err != nil {
			return fmt.Errorf("parse config %q: %w", resolved, err)
		}
	}
	applyFileConfig(cfg, fileCfg)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Provider != nil {
		cfg.Provider = mergeProvider(cfg.Provider, *fc.Provider)
	}
	if fc.Classifier != nil {
		cfg.Classifier = mergeClassifier(cfg.Classifier, *fc.Classifier)
	}
	if fc.Storage != nil {
		cfg.Storage = mergeStorage(cfg.Storage, *fc.Storage)
	}
	if fc.UI != nil {
		cfg.UI = mergeUI(cfg.UI, *fc.UI)
	}
	if fc.Log != nil {
		if strings.TrimSpace(fc.Log.Level) != "" {
			cfg.Log.Level = fc.Log.Level
		}
		if strings.TrimSpace(fc.Log.File) != "" {
			cfg.Log.File = fc.Log.File
		}
	}
}

func mergeProvider(base ProviderConfig, override ProviderConfig) ProviderConfig {
	if strings.TrimSpace(override.Kind) != "" && !strings.EqualFold(strings.TrimSpace(override.Kind), base.Kind) {
		base.Kind = override.Kind
		// 切换后端时，之前层的模型不再适用
		// A model chosen for another backend does not carry over.
		base.Model = ""
		base.Models = nil
	}
	if strings.TrimSpace(override.BaseURL) != "" {
		base.BaseURL = override.BaseURL
	}
	if strings.TrimSpace(override.Model) != "" {
		base.Model = override.Model
	}
	if strings.TrimSpace(override.APIKey) != "" {
		base.APIKey = override.APIKey
	}
	if len(override.Models) > 0 {
		base.Models = append([]string(nil), override.Models...)
	}
	if override.TimeoutMS > 0 {
		base.TimeoutMS = override.TimeoutMS
	}
	if override.MaxTokens > 0 {
		base.MaxTokens = override.MaxTokens
	}
	return base
}

func mergeClassifier(base ClassifierConfig, override ClassifierConfig) ClassifierConfig {
	if strings.TrimSpace(override.History) != "" {
		base.History = override.History
	}
	if override.HistoryTokenLimit > 0 {
		base.HistoryTokenLimit = override.HistoryTokenLimit
	}
	if len(override.QueryPhrases) > 0 {
		base.QueryPhrases = append([]string(nil), override.QueryPhrases...)
	}
	if strings.TrimSpace(override.SystemPrompt) != "" {
		base.SystemPrompt = override.SystemPrompt
	}
	return base
}

func mergeStorage(base StorageConfig, override StorageConfig) StorageConfig {
	if strings.TrimSpace(override.BaseDir) != "" {
		base.BaseDir = override.BaseDir
	}
	if strings.TrimSpace(override.Backend) != "" {
		base.Backend = override.Backend
	}
	return base
}

func mergeUI(base UIConfig, override UIConfig) UIConfig {
	if strings.TrimSpace(override.Language) != "" {
		base.Language = override.Language
	}
	if len(override.QuickPrompts) > 0 {
		base.QuickPrompts = append([]string(nil), override.QuickPrompts...)
	}
	if strings.TrimSpace(override.Mode) != "" {
		base.Mode = override.Mode
	}
	return base
}

func normalize(cfg *Config) error {
	cfg.Provider.Kind = strings.ToLower(strings.TrimSpace(cfg.Provider.Kind))
	if cfg.Provider.Kind == "" {
		cfg.Provider.Kind = DefaultProviderKind
	}
	defaultModel, ok := defaultModels[cfg.Provider.Kind]
	if !ok {
		return fmt.Errorf("invalid provider.kind %q (want anthropic, openai or gemini)", cfg.Provider.Kind)
	}
	cfg.Provider.Model = strings.TrimSpace(cfg.Provider.Model)
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = defaultModel
	}
	cfg.Provider.BaseURL = strings.TrimSpace(cfg.Provider.BaseURL)
	if cfg.Provider.TimeoutMS <= 0 {
		cfg.Provider.TimeoutMS = DefaultProviderTimeoutMS
	}
	if cfg.Provider.MaxTokens <= 0 {
		cfg.Provider.MaxTokens = DefaultProviderMaxTokens
	}
	cfg.Provider.Models = normalizeList(cfg.Provider.Models)
	if !containsString(cfg.Provider.Models, cfg.Provider.Model) {
		cfg.Provider.Models = append([]string{cfg.Provider.Model}, cfg.Provider.Models...)
	}

	cfg.Classifier.History = strings.ToLower(strings.TrimSpace(cfg.Classifier.History))
	switch cfg.Classifier.History {
	case "":
		cfg.Classifier.History = HistoryLatest
	case HistoryLatest, HistoryFull:
	default:
		return fmt.Errorf("invalid classifier.history %q (want latest or full)", cfg.Classifier.History)
	}
	if cfg.Classifier.HistoryTokenLimit <= 0 {
		cfg.Classifier.HistoryTokenLimit = DefaultHistoryTokenLimit
	}
	cfg.Classifier.QueryPhrases = normalizeList(cfg.Classifier.QueryPhrases)

	storageDir, err := expandPath(cfg.Storage.BaseDir)
	if err != nil {
		return err
	}
	if storageDir == "" {
		if storageDir, err = expandPath(Default().Storage.BaseDir); err != nil {
			return err
		}
	}
	cfg.Storage.BaseDir = storageDir
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	switch cfg.Storage.Backend {
	case "":
		cfg.Storage.Backend = Default().Storage.Backend
	case "sqlite", "badger", "file":
	default:
		return fmt.Errorf("invalid storage.backend %q (want sqlite, badger or file)", cfg.Storage.Backend)
	}

	cfg.UI.Language = strings.TrimSpace(cfg.UI.Language)
	cfg.UI.QuickPrompts = normalizeList(cfg.UI.QuickPrompts)
	cfg.UI.Mode = strings.ToLower(strings.TrimSpace(cfg.UI.Mode))
	switch cfg.UI.Mode {
	case "":
		cfg.UI.Mode = "auto"
	case "auto", "tui", "repl":
	default:
		return fmt.Errorf("invalid ui.mode %q (want auto, tui or repl)", cfg.UI.Mode)
	}

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	switch cfg.Log.Level {
	case "":
		cfg.Log.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", cfg.Log.Level)
	}
	if strings.TrimSpace(cfg.Log.File) == "" {
		cfg.Log.File = filepath.Join(cfg.Storage.BaseDir, "logs", "memo.log")
	} else if cfg.Log.File, err = expandPath(cfg.Log.File); err != nil {
		return err
	}
	return nil
}

func applyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv("MEMO_PROVIDER")); v != "" {
		cfg.Provider = mergeProvider(cfg.Provider, ProviderConfig{Kind: v})
	}
	if v := strings.TrimSpace(os.Getenv("MEMO_BASE_URL")); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("MEMO_MODEL")); v != "" {
		cfg.Provider.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("MEMO_API_KEY")); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("MEMO_MAX_TOKENS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid MEMO_MAX_TOKENS: %q", v)
		}
		cfg.Provider.MaxTokens = n
	}
	if v := strings.TrimSpace(os.Getenv("MEMO_HISTORY")); v != "" {
		cfg.Classifier.History = v
	}
	if v := strings.TrimSpace(os.Getenv("MEMO_HOME")); v != "" {
		cfg.Storage.BaseDir = v
		cfg.Log.File = ""
	}
	if v := strings.TrimSpace(os.Getenv("MEMO_STORAGE")); v != "" {
		cfg.Storage.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("MEMO_LANG")); v != "" {
		cfg.UI.Language = v
	}

	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	// 厂商 key 只在未显式配置时兜底
	// Vendor keys only fill in when nothing else set a key.
	if cfg.Provider.APIKey == "" {
		if env, ok := vendorKeyEnv[cfg.Provider.Kind]; ok {
			cfg.Provider.APIKey = strings.TrimSpace(os.Getenv(env))
		}
	}
	return cfg, nil
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := map[string]struct{}{}
	for _, m := range items {
		trimmed := strings.TrimSpace(m)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func containsString(items []string, needle string) bool {
	for _, item := range items {
		if item == needle {
			return true
		}
	}
	return false
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return filepath.Abs(path)
}

func stripJSONComments(data []byte) []byte {
	const (
		stateNormal = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	escaped := false
	out := bytes.Buffer{}

	for i := 0; i < len(data); i++ {
		c := data[i]
		next := byte(0)
		if i+1 < len(data) {
			next = data[i+1]
		}

		switch state {
		case stateNormal:
			if c == '"' {
				state = stateString
				out.WriteByte(c)
				continue
			}
			if c == '/' && next == '/' {
				state = stateLineComment
				i++
				continue
			}
			if c == '/' && next == '*' {
				state = stateBlockComment
				i++
				continue
			}
			out.WriteByte(c)
		case stateString:
			out.WriteByte(c)
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == '"' {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}

	return out.Bytes()
}
