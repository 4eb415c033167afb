package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hyperifyio/mailsig/internal/patterns"
)

// configContributor identifies the filters registered from configuration.
const configContributor = "config"

// BuildPatternSet freezes the stock registry extended with the limits, footer
// exemplars, ratio and extra pattern alternatives found in cfg.
func BuildPatternSet(cfg Config) (*patterns.Set, error) {
	b := patterns.NewBuilder().WithLimits(cfg.Limits)

	names := make([]string, 0, len(cfg.Patterns))
	for name := range cfg.Patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		extra := cfg.Patterns[name]
		alts := make([]string, 0, len(extra.Alternatives))
		for _, a := range extra.Alternatives {
			if strings.TrimSpace(a) != "" {
				alts = append(alts, a)
			}
		}
		if len(alts) == 0 {
			continue
		}
		fn := func(p string, _ patterns.Args) string {
			return p + "\n|\n" + strings.Join(alts, "\n|\n")
		}
		if err := b.RegisterPatternFilter(name, configContributor, fn, extra.Priority); err != nil {
			return nil, fmt.Errorf("patterns.%s: %w", name, err)
		}
	}

	if len(cfg.FooterLines) > 0 {
		extra := append([]string(nil), cfg.FooterLines...)
		fn := func(lines []string, _ patterns.Args) []string { return append(lines, extra...) }
		if err := b.RegisterFooterLinesFilter(configContributor, fn, 0); err != nil {
			return nil, err
		}
	}
	if cfg.FooterRatio != patterns.DefaultFooterLinesRatio {
		ratio := cfg.FooterRatio
		fn := func(float64, patterns.Args) float64 { return ratio }
		if err := b.RegisterRatioFilter(configContributor, fn, 0); err != nil {
			return nil, err
		}
	}
	return b.Freeze()
}
