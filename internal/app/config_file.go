package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"

    yaml "gopkg.in/yaml.v3"

    "github.com/hyperifyio/mailsig/internal/message"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
    Input []string `yaml:"input" json:"input"`

    Output struct {
        Path   string `yaml:"path" json:"path"`
        Format string `yaml:"format" json:"format"`
        PDF    string `yaml:"pdf" json:"pdf"`
    } `yaml:"output" json:"output"`

    Message struct {
        Kind    string `yaml:"kind" json:"kind"`
        Charset string `yaml:"charset" json:"charset"`
    } `yaml:"message" json:"message"`

    Limits struct {
        TooLongSignatureLine  int `yaml:"tooLongSignatureLine" json:"tooLongSignatureLine"`
        SignatureMaxLines     int `yaml:"signatureMaxLines" json:"signatureMaxLines"`
        SignatureLineMaxChars int `yaml:"signatureLineMaxChars" json:"signatureLineMaxChars"`
    } `yaml:"limits" json:"limits"`

    Footer struct {
        // Ratio is a pointer so that an explicit 0 is distinguishable from unset.
        Ratio *float64 `yaml:"ratio" json:"ratio"`
        Lines []string `yaml:"lines" json:"lines"`
    } `yaml:"footer" json:"footer"`

    Patterns map[string]PatternExtra `yaml:"patterns" json:"patterns"`

    Workers int  `yaml:"workers" json:"workers"`
    Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays the values present in fc onto cfg. It runs on top
// of DefaultConfig, before env overrides and flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }

    var inputs []string
    for _, in := range fc.Input {
        if v := strings.TrimSpace(in); v != "" { inputs = append(inputs, v) }
    }
    if len(inputs) > 0 { cfg.Inputs = inputs }
    if fc.Output.Path != "" { cfg.OutputPath = fc.Output.Path }
    if fc.Output.Format != "" { cfg.Format = strings.ToLower(fc.Output.Format) }
    if fc.Output.PDF != "" { cfg.OutputPDFPath = fc.Output.PDF }

    if fc.Message.Kind != "" { cfg.Kind = fc.Message.Kind }
    if fc.Message.Charset != "" { cfg.Charset = fc.Message.Charset }

    if fc.Limits.TooLongSignatureLine != 0 { cfg.Limits.TooLongSignatureLine = fc.Limits.TooLongSignatureLine }
    if fc.Limits.SignatureMaxLines != 0 { cfg.Limits.SignatureMaxLines = fc.Limits.SignatureMaxLines }
    if fc.Limits.SignatureLineMaxChars != 0 { cfg.Limits.SignatureLineMaxChars = fc.Limits.SignatureLineMaxChars }

    if fc.Footer.Ratio != nil { cfg.FooterRatio = *fc.Footer.Ratio }
    if len(fc.Footer.Lines) > 0 { cfg.FooterLines = append([]string{}, fc.Footer.Lines...) }

    if len(fc.Patterns) > 0 {
        if cfg.Patterns == nil { cfg.Patterns = make(map[string]PatternExtra, len(fc.Patterns)) }
        for name, extra := range fc.Patterns {
            cfg.Patterns[name] = extra
        }
    }

    if fc.Workers != 0 { cfg.Workers = fc.Workers }
    if fc.Verbose { cfg.Verbose = true }
}

// ValidateConfig rejects settings the extractor can not run with.
func ValidateConfig(cfg Config) error {
    if len(cfg.Inputs) == 0 {
        return errors.New("config: at least one input is required")
    }
    if strings.TrimSpace(cfg.OutputPath) == "" {
        return errors.New("config: output path is required")
    }
    switch cfg.Format {
    case FormatMarkdown, FormatJSON, FormatText:
    default:
        return fmt.Errorf("config: unknown format %q (want markdown, json or text)", cfg.Format)
    }
    if _, err := message.ParseKind(cfg.Kind); err != nil {
        return fmt.Errorf("config: %w", err)
    }
    l := cfg.Limits
    if l.TooLongSignatureLine <= 0 || l.SignatureMaxLines <= 0 || l.SignatureLineMaxChars <= 0 {
        return errors.New("config: limits must be positive")
    }
    if cfg.FooterRatio < 0 || cfg.FooterRatio > 1 {
        return fmt.Errorf("config: footer ratio %v outside [0, 1]", cfg.FooterRatio)
    }
    if cfg.Workers < 0 {
        return errors.New("config: negative worker count")
    }
    return nil
}
