package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProjectConfigPath is ./.memo/config.json under projectDir.
func ProjectConfigPath(projectDir string) string {
	return filepath.Join(strings.TrimSpace(projectDir), ".memo", "config.json")
}

// InitProjectConfigScaffold 在 projectDir 下写入默认配置模板；已存在时保持不动
// InitProjectConfigScaffold writes the default config to
// ./.memo/config.json. An existing file is kept and created reports false.
func InitProjectConfigScaffold(projectDir string) (path string, created bool, err error) {
	path = ProjectConfigPath(projectDir)
	switch info, statErr := os.Stat(path); {
	case statErr == nil && info.IsDir():
		return "", false, fmt.Errorf("project config path is a directory: %s", path)
	case statErr == nil:
		return path, false, nil
	case !errors.Is(statErr, os.ErrNotExist):
		return "", false, fmt.Errorf("stat project config: %w", statErr)
	}
	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return "", false, fmt.Errorf("marshal default config: %w", err)
	}
	if err := writeProjectConfig(path, data); err != nil {
		return "", false, err
	}
	return path, true, nil
}

// WriteProviderModel 记住 /model 的选择：只改 provider.model，其余键保留
// WriteProviderModel records a /model switch in the project config. Other
// keys, including ones this version does not know, are preserved.
func WriteProviderModel(projectDir, model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return errors.New("model is empty")
	}
	return updateProjectConfig(projectDir, func(root map[string]any) {
		section, _ := root["provider"].(map[string]any)
		if section == nil {
			section = map[string]any{}
		}
		section["model"] = model
		root["provider"] = section
	})
}

// updateProjectConfig applies edit to the raw JSON tree of the project
// config. An unreadable file is replaced rather than failing the edit.
func updateProjectConfig(projectDir string, edit func(root map[string]any)) error {
	path := ProjectConfigPath(projectDir)
	root := map[string]any{}
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(stripJSONComments(data), &root); err != nil || root == nil {
			root = map[string]any{}
		}
	}
	edit(root)
	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project config: %w", err)
	}
	return writeProjectConfig(path, data)
}

// writeProjectConfig replaces path through a temp file in the same dir so
// a crash never leaves half a config behind.
func writeProjectConfig(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir .memo: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "config-*.json")
	if err != nil {
		return fmt.Errorf("write project config: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write project config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write project config: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write project config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write project config: %w", err)
	}
	return nil
}
