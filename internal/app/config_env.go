package app

import (
    "os"
    "strconv"
    "strings"

    "github.com/rs/zerolog/log"
)

// Environment variable names.
const (
    EnvTooLongSignatureLine  = "TOO_LONG_SIGNATURE_LINE"
    EnvSignatureMaxLines     = "SIGNATURE_MAX_LINES"
    EnvSignatureLineMaxChars = "SIGNATURE_LINE_MAX_CHARS"
    EnvFooterLinesRatio      = "FOOTER_LINES_RATIO"
    EnvFooterLines           = "FOOTER_LINES"
    EnvFormat                = "MAILSIG_FORMAT"
    EnvWorkers               = "MAILSIG_WORKERS"
    EnvVerbose               = "VERBOSE"
)

// ApplyEnvOverrides overrides cfg fields with environment variables that are
// set. It runs after the config file so env wins over file, and before flags
// so explicit flags win over env. Unparsable values are logged and ignored.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil { return }

    setInt := func(dst *int, key string) {
        s := strings.TrimSpace(os.Getenv(key))
        if s == "" { return }
        n, err := strconv.Atoi(s)
        if err != nil {
            log.Warn().Str("env", key).Str("value", s).Msg("ignoring non-integer value")
            return
        }
        *dst = n
    }
    setInt(&cfg.Limits.TooLongSignatureLine, EnvTooLongSignatureLine)
    setInt(&cfg.Limits.SignatureMaxLines, EnvSignatureMaxLines)
    setInt(&cfg.Limits.SignatureLineMaxChars, EnvSignatureLineMaxChars)
    setInt(&cfg.Workers, EnvWorkers)

    if s := strings.TrimSpace(os.Getenv(EnvFooterLinesRatio)); s != "" {
        if f, err := strconv.ParseFloat(s, 64); err == nil {
            cfg.FooterRatio = f
        } else {
            log.Warn().Str("env", EnvFooterLinesRatio).Str("value", s).Msg("ignoring non-numeric value")
        }
    }
    // FOOTER_LINES is '|' separated since exemplars may contain commas
    if s := os.Getenv(EnvFooterLines); strings.TrimSpace(s) != "" {
        cfg.FooterLines = SplitList(s, "|")
    }
    if v := strings.TrimSpace(os.Getenv(EnvFormat)); v != "" { cfg.Format = strings.ToLower(v) }

    if s := strings.ToLower(strings.TrimSpace(os.Getenv(EnvVerbose))); s != "" {
        switch s {
        case "1", "true", "yes", "on":
            cfg.Verbose = true
        case "0", "false", "no", "off":
            cfg.Verbose = false
        }
    }
}

// SplitList splits s on sep and drops blank entries.
func SplitList(s, sep string) []string {
    parts := strings.Split(s, sep)
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        if v := strings.TrimSpace(p); v != "" { out = append(out, v) }
    }
    return out
}
