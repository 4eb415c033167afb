// Package signature separates the trailing signature block of a plain text
// email body from its content using positional and lexical heuristics.
package signature

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/mailsig/internal/patterns"
)

// ErrNotSuffix is reported when the matched signature is not a suffix of the
// rejoined body. Extraction then leaves the body untouched.
var ErrNotSuffix = errors.New("signature is not a suffix of the body")

// Outcome is the result of an extraction: the body without its signature and
// the signature, when one was found.
type Outcome struct {
	Body         string
	Signature    string
	HasSignature bool
}

// CleanOnly is an outcome without a signature.
func CleanOnly(body string) Outcome {
	return Outcome{Body: body}
}

// CleanWithSignature is an outcome carrying a signature.
func CleanWithSignature(body, signature string) Outcome {
	return Outcome{Body: body, Signature: signature, HasSignature: true}
}

// Pair returns the body and the signature, nil when absent.
func (o Outcome) Pair() (string, *string) {
	if !o.HasSignature {
		return o.Body, nil
	}
	sig := o.Signature
	return o.Body, &sig
}

// DocumentToText converts an HTML document into plain text. ok is false when
// the document can not be converted.
type DocumentToText func(html string) (text string, ok bool)

// Extractor runs signature extraction against one frozen pattern set. It is
// safe for concurrent use.
type Extractor struct {
	set    *patterns.Set
	footer FooterDetector
}

// New returns an extractor for set, or for the default set when set is nil.
func New(set *patterns.Set) *Extractor {
	if set == nil {
		set = patterns.Default()
	}
	return &Extractor{set: set, footer: NewFooterDetector(set)}
}

var (
	defaultOnce      sync.Once
	defaultExtractor *Extractor
)

// ExtractSignature runs the default extractor over body.
func ExtractSignature(body string) Outcome {
	defaultOnce.Do(func() { defaultExtractor = New(nil) })
	return defaultExtractor.ExtractSignature(body)
}

// ExtractSignature analyzes body for a signature block. It never fails: any
// internal fault is logged and the original body is returned without a
// signature.
//
//	ExtractSignature("Hey man! How r u?\n\n--\nRegards,\nRoman")
//	  => Outcome{Body: "Hey man! How r u?", Signature: "--\nRegards,\nRoman"}
func (e *Extractor) ExtractSignature(body string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("stage", "signature").Interface("panic", r).Msg("extracting signature failed; keeping body")
			out = CleanOnly(body)
		}
	}()
	res, err := e.extract(body)
	if err != nil {
		log.Error().Err(err).Str("stage", "signature").Msg("extracting signature failed; keeping body")
		return CleanOnly(body)
	}
	return res
}

// ExtractHTML converts html with toText and extracts the signature of the
// resulting text. A failed conversion keeps html unchanged.
func (e *Extractor) ExtractHTML(html string, toText DocumentToText) Outcome {
	if toText == nil {
		return CleanOnly(html)
	}
	text, ok := toText(html)
	if !ok {
		log.Warn().Str("stage", "signature").Msg("html conversion failed; keeping body")
		return CleanOnly(html)
	}
	return e.ExtractSignature(text)
}

func (e *Extractor) extract(body string) (Outcome, error) {
	delimiter := Delimiter(body)
	stripped := strings.TrimSpace(body)
	lines := SplitLines(stripped)

	cand := selectCandidate(lines, e.set.Limits(), e.footer)
	remaining := strings.Join(cand.Remaining, delimiter)
	footer := strings.Join(cand.Footer, delimiter)

	log.Debug().Str("stage", "signature").Int("lines", len(lines)).Int("candidate", len(cand.Lines)).Bool("footer", len(cand.Footer) > 0).Msg("candidate selected")

	text := strings.Join(cand.Lines, delimiter)
	var loc []int
	if len(cand.Lines) > 0 {
		loc = e.set.Signature().FindStringIndex(text)
	}
	// an empty or blank match is no signature
	if loc != nil && strings.TrimSpace(text[loc[0]:loc[1]]) == "" {
		loc = nil
	}
	if loc == nil {
		if len(cand.Footer) == 0 {
			return CleanOnly(stripped), nil
		}
		return CleanWithSignature(strings.TrimSpace(remaining), strings.TrimSpace(footer)), nil
	}

	sig := text[loc[0]:loc[1]]
	if !strings.HasSuffix(remaining, sig) {
		return Outcome{}, fmt.Errorf("%w: %d chars", ErrNotSuffix, len(sig))
	}
	clean := remaining[:len(remaining)-len(sig)]
	if len(cand.Footer) > 0 {
		sig = sig + delimiter + footer
	}
	return CleanWithSignature(strings.TrimSpace(clean), strings.TrimSpace(sig)), nil
}
