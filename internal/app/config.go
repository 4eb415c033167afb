package app

import "github.com/hyperifyio/mailsig/internal/patterns"

// Report formats.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatText     = "text"
)

// Config holds runtime configuration for the application.
type Config struct {
	// Inputs are files to read; "-" reads standard input.
	Inputs     []string
	OutputPath string // "-" writes to standard output
	Format     string

	// OutputPDFPath, when set, also renders the report as PDF.
	OutputPDFPath string

	// Message parsing
	Kind    string
	Charset string

	// Extraction
	Limits      patterns.Limits
	FooterRatio float64
	// FooterLines are extra known footer exemplars.
	FooterLines []string
	// Patterns extends registry chains by name.
	Patterns map[string]PatternExtra

	// Behavior
	Workers  int
	EnvFiles []string
	Verbose  bool
}

// PatternExtra appends verbose alternatives to one pattern chain.
type PatternExtra struct {
	Alternatives []string `yaml:"alternatives" json:"alternatives"`
	Priority     int      `yaml:"priority" json:"priority"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Inputs:      []string{"-"},
		OutputPath:  "-",
		Format:      FormatMarkdown,
		Kind:        "auto",
		Limits:      patterns.DefaultLimits(),
		FooterRatio: patterns.DefaultFooterLinesRatio,
		EnvFiles:    []string{".env"},
	}
}
