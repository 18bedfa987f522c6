package server

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetsYAML []byte

// Preset は編集モードの定型指示です。
type Preset struct {
	Label  string `yaml:"label" json:"label"`
	Prompt string `yaml:"prompt" json:"prompt"`
}

// LoadPresets は YAML から定型指示を読み込みます。data が空なら組み込みの定義を使います。
func LoadPresets(data []byte) ([]Preset, error) {
	if len(data) == 0 {
		data = presetsYAML
	}
	var doc struct {
		Presets []Preset `yaml:"presets"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("プリセットの解析に失敗しました: %w", err)
	}
	for i, p := range doc.Presets {
		if p.Label == "" || p.Prompt == "" {
			return nil, fmt.Errorf("preset %d: label and prompt are required", i)
		}
	}
	return doc.Presets, nil
}
