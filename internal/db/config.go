package db

import (
	"os"

	"gopkg.in/yaml.v3"
)

type SemanticTokenMode uint8

const (
	SemanticTokensNone SemanticTokenMode = iota
	SemanticTokensPartial
	SemanticTokensFull
)

type InlayHintMode uint8

const (
	InlayHintsNone InlayHintMode = iota
	InlayHintsType
	InlayHintsParameter
	InlayHintsFull
)

func TypeHintsEnabled(mode InlayHintMode) bool {
	return mode == InlayHintsType || mode == InlayHintsFull
}

func ParameterHintsEnabled(mode InlayHintMode) bool {
	return mode == InlayHintsParameter || mode == InlayHintsFull
}

// Configuration controls which document info is collected and how
// inference defaults behave.
type Configuration struct {
	MainName        string
	Extension       string
	SemanticTokens  SemanticTokenMode
	InlayHints      InlayHintMode
	References      bool
	CodeActions     bool
	SignatureHelp   bool
	CodeCompletion  bool
	Diagnostics     bool
	DefaultIntegers bool
}

// DefaultConfiguration matches batch compilation: diagnostics only,
// integer literals defaulting to I32.
func DefaultConfiguration() Configuration {
	return Configuration{
		MainName:        "main",
		Extension:       "ki",
		Diagnostics:     true,
		DefaultIntegers: true,
	}
}

// ServerConfiguration enables every feature a language client can
// consume.
func ServerConfiguration() Configuration {
	config := DefaultConfiguration()
	config.SemanticTokens = SemanticTokensFull
	config.InlayHints = InlayHintsFull
	config.References = true
	config.CodeActions = true
	config.SignatureHelp = true
	config.CodeCompletion = true
	return config
}

type yamlConfiguration struct {
	MainName        *string `yaml:"main_name"`
	Extension       *string `yaml:"extension"`
	SemanticTokens  *string `yaml:"semantic_tokens"`
	InlayHints      *string `yaml:"inlay_hints"`
	References      *bool   `yaml:"references"`
	CodeActions     *bool   `yaml:"code_actions"`
	SignatureHelp   *bool   `yaml:"signature_help"`
	CodeCompletion  *bool   `yaml:"code_completion"`
	Diagnostics     *bool   `yaml:"diagnostics"`
	DefaultIntegers *bool   `yaml:"default_integers"`
}

// LoadConfiguration reads a kieli.yml file and applies it field-wise
// over base. A missing file leaves base untouched.
func LoadConfiguration(path string, base Configuration) (Configuration, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, err
	}

	var parsed yamlConfiguration
	if err := yaml.Unmarshal(content, &parsed); err != nil {
		return base, err
	}

	if parsed.MainName != nil {
		base.MainName = *parsed.MainName
	}
	if parsed.Extension != nil {
		base.Extension = *parsed.Extension
	}
	if parsed.SemanticTokens != nil {
		switch *parsed.SemanticTokens {
		case "none":
			base.SemanticTokens = SemanticTokensNone
		case "partial":
			base.SemanticTokens = SemanticTokensPartial
		case "full":
			base.SemanticTokens = SemanticTokensFull
		}
	}
	if parsed.InlayHints != nil {
		switch *parsed.InlayHints {
		case "none":
			base.InlayHints = InlayHintsNone
		case "type":
			base.InlayHints = InlayHintsType
		case "parameter":
			base.InlayHints = InlayHintsParameter
		case "full":
			base.InlayHints = InlayHintsFull
		}
	}
	if parsed.References != nil {
		base.References = *parsed.References
	}
	if parsed.CodeActions != nil {
		base.CodeActions = *parsed.CodeActions
	}
	if parsed.SignatureHelp != nil {
		base.SignatureHelp = *parsed.SignatureHelp
	}
	if parsed.CodeCompletion != nil {
		base.CodeCompletion = *parsed.CodeCompletion
	}
	if parsed.Diagnostics != nil {
		base.Diagnostics = *parsed.Diagnostics
	}
	if parsed.DefaultIntegers != nil {
		base.DefaultIntegers = *parsed.DefaultIntegers
	}
	return base, nil
}
