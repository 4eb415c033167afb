package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/mailsig/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) || errors.Is(err, errVersion) {
		os.Exit(0)
	}
	if err != nil {
		log.Error().Err(err).Msg("configuration failed")
		os.Exit(1)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(exitCode(run(ctx, cfg)))
}

var errVersion = errors.New("version requested")

// parseConfig builds the configuration with precedence flags > env > config
// file > defaults. Dotenv files are loaded before the environment is read.
func parseConfig(args []string, stderr io.Writer) (app.Config, error) {
	fs := flag.NewFlagSet("mailsig", flag.ContinueOnError)
	fs.SetOutput(stderr)
	def := app.DefaultConfig()

	var (
		input       string
		output      string
		format      string
		outputPDF   string
		configPath  string
		envFiles    string
		kind        string
		charset     string
		verbose     bool
		maxLines    int
		tooLong     int
		lineMax     int
		footerRatio float64
		footerLines string
		workers     int
		version     bool
	)
	fs.StringVar(&input, "input", "-", "Input file: .eml, .mbox, .html or plain text; '-' reads stdin. Extra inputs may follow as arguments")
	fs.StringVar(&output, "output", def.OutputPath, "Report destination; '-' writes to stdout")
	fs.StringVar(&format, "format", def.Format, "Report format: markdown, json (JSON lines) or text")
	fs.StringVar(&outputPDF, "output.pdf", "", "Also render the report as PDF to this path")
	fs.StringVar(&configPath, "config", os.Getenv("MAILSIG_CONFIG"), "Path to YAML or JSON config file")
	fs.StringVar(&envFiles, "env", strings.Join(def.EnvFiles, ","), "Comma-separated dotenv files to load")
	fs.StringVar(&kind, "kind", def.Kind, "Input kind: auto, text, html, eml or mbox")
	fs.StringVar(&charset, "charset", "", "Declared charset of raw text or HTML input (e.g. windows-1252)")
	fs.BoolVar(&verbose, "v", false, "Verbose logging")
	fs.IntVar(&maxLines, "max.lines", def.Limits.SignatureMaxLines, "Maximum number of signature candidate lines")
	fs.IntVar(&tooLong, "too.long", def.Limits.TooLongSignatureLine, "Line length above which a line can not be part of a signature")
	fs.IntVar(&lineMax, "line.maxChars", def.Limits.SignatureLineMaxChars, "Reserved signature line length limit")
	fs.Float64Var(&footerRatio, "footer.ratio", def.FooterRatio, "Similarity above which a line matches a known footer exemplar")
	fs.StringVar(&footerLines, "footer.lines", "", "Comma-separated known footer exemplar lines")
	fs.IntVar(&workers, "workers", 0, "Concurrent extraction workers (0 = number of CPUs)")
	fs.BoolVar(&version, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return app.Config{}, err
	}
	if version {
		fmt.Fprintln(stderr, app.VersionString())
		return app.Config{}, errVersion
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if err := app.LoadEnvFiles(app.SplitList(envFiles, ",")...); err != nil {
		return app.Config{}, err
	}

	cfg := def
	cfg.EnvFiles = app.SplitList(envFiles, ",")
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("config %s: %w", configPath, err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	if set["input"] || fs.NArg() > 0 {
		var inputs []string
		if set["input"] {
			inputs = append(inputs, input)
		}
		cfg.Inputs = append(inputs, fs.Args()...)
	}
	if set["output"] { cfg.OutputPath = output }
	if set["format"] { cfg.Format = strings.ToLower(format) }
	if set["output.pdf"] { cfg.OutputPDFPath = outputPDF }
	if set["kind"] { cfg.Kind = kind }
	if set["charset"] { cfg.Charset = charset }
	if set["v"] { cfg.Verbose = verbose }
	if set["max.lines"] { cfg.Limits.SignatureMaxLines = maxLines }
	if set["too.long"] { cfg.Limits.TooLongSignatureLine = tooLong }
	if set["line.maxChars"] { cfg.Limits.SignatureLineMaxChars = lineMax }
	if set["footer.ratio"] { cfg.FooterRatio = footerRatio }
	if set["footer.lines"] { cfg.FooterLines = app.SplitList(footerLines, ",") }
	if set["workers"] { cfg.Workers = workers }

	return cfg, app.ValidateConfig(cfg)
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}

// exitCode maps run errors to process exit codes: 2 when no message could be
// read, 1 for any other failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrNoMessages):
		log.Error().Err(err).Msg("run failed")
		return 2
	default:
		log.Error().Err(err).Msg("run failed")
		return 1
	}
}
