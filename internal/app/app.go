package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/mailsig/internal/extract"
	"github.com/hyperifyio/mailsig/internal/message"
	"github.com/hyperifyio/mailsig/internal/signature"
)

// ErrNoMessages is returned when no input yielded a readable message. The CLI
// maps it to exit code 2.
var ErrNoMessages = errors.New("no readable messages")

type App struct {
	cfg       Config
	extractor *signature.Extractor
	html      extract.Extractor
	stdin     io.Reader
	stdout    io.Writer
}

// Result pairs a message with the outcome of its extraction.
type Result struct {
	Message message.Message
	Outcome signature.Outcome
}

func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	set, err := BuildPatternSet(cfg)
	if err != nil {
		return nil, fmt.Errorf("build patterns: %w", err)
	}
	log.Debug().
		Int("tooLong", set.Limits().TooLongSignatureLine).
		Int("maxLines", set.Limits().SignatureMaxLines).
		Float64("footerRatio", set.FooterRatio()).
		Int("footerLines", len(set.FooterLines())).
		Msg("pattern set ready")
	return &App{
		cfg:       cfg,
		extractor: signature.New(set),
		html:      extract.HTMLExtractor{},
		stdin:     os.Stdin,
		stdout:    os.Stdout,
	}, nil
}

func (a *App) Close() {
	// nothing yet
}

func (a *App) Run(ctx context.Context) error {
	msgs, err := a.readMessages(ctx)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return ErrNoMessages
	}

	results, err := a.extractAll(ctx, msgs)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := writeReport(&buf, a.cfg.Format, results); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := a.writeOutput(buf.Bytes()); err != nil {
		return err
	}
	if a.cfg.OutputPDFPath != "" {
		if err := writeReportPDF(results, a.cfg.OutputPDFPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("path", a.cfg.OutputPDFPath).Msg("pdf report written")
	}

	withSig := 0
	for _, r := range results {
		if r.Outcome.HasSignature {
			withSig++
		}
	}
	log.Info().Int("messages", len(results)).Int("withSignature", withSig).Int("withoutSignature", len(results)-withSig).Msg("extraction complete")
	return nil
}

// readMessages loads every input. A source that fails to open or parse is
// logged and skipped so one bad file does not abort the batch.
func (a *App) readMessages(ctx context.Context) ([]message.Message, error) {
	kind, err := message.ParseKind(a.cfg.Kind)
	if err != nil {
		return nil, err
	}
	opts := message.Options{Kind: kind, Charset: a.cfg.Charset, Extractor: a.html}
	var out []message.Message
	for _, name := range a.cfg.Inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msgs, err := a.readSource(ctx, name, opts)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if err != nil {
			log.Warn().Err(err).Str("source", name).Msg("skipping unreadable input")
			continue
		}
		log.Debug().Str("source", name).Int("messages", len(msgs)).Msg("input read")
		out = append(out, msgs...)
	}
	return out, nil
}

func (a *App) readSource(ctx context.Context, name string, opts message.Options) ([]message.Message, error) {
	if name == "-" {
		return message.Read(ctx, "stdin", a.stdin, opts)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return message.Read(ctx, name, f, opts)
}

// extractAll runs the extractor over msgs with a bounded number of workers.
// Results keep the order of msgs.
func (a *App) extractAll(ctx context.Context, msgs []message.Message) ([]Result, error) {
	workers := a.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]Result, len(msgs))
	limiter := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range msgs {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case limiter <- struct{}{}:
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-limiter }()
			results[i] = Result{Message: msgs[i], Outcome: a.extractor.ExtractSignature(msgs[i].Body)}
		}(i)
	}
	wg.Wait()
	return results, nil
}

func (a *App) writeOutput(b []byte) error {
	if a.cfg.OutputPath == "-" {
		_, err := a.stdout.Write(b)
		return err
	}
	if err := os.WriteFile(a.cfg.OutputPath, b, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info().Str("path", a.cfg.OutputPath).Msg("report written")
	return nil
}
