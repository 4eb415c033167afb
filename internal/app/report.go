package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// reportRecord is one JSON lines entry. Signature is null when absent.
type reportRecord struct {
	Source    string  `json:"source"`
	Subject   string  `json:"subject,omitempty"`
	From      string  `json:"from,omitempty"`
	HTML      bool    `json:"html,omitempty"`
	Body      string  `json:"body"`
	Signature *string `json:"signature"`
}

func writeReport(w io.Writer, format string, results []Result) error {
	switch format {
	case FormatJSON:
		return writeJSONLines(w, results)
	case FormatText:
		return writeText(w, results)
	case FormatMarkdown, "":
		return writeMarkdown(w, results)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeJSONLines(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range results {
		body, sig := r.Outcome.Pair()
		rec := reportRecord{
			Source:    r.Message.Source,
			Subject:   r.Message.Subject,
			From:      r.Message.From,
			HTML:      r.Message.HTML,
			Body:      body,
			Signature: sig,
		}
		if err := enc.Encode(&rec); err != nil {
			return err
		}
	}
	return nil
}

// writeText prints each body, a "-- " separator line and the signature. A
// form feed separates messages.
func writeText(w io.Writer, results []Result) error {
	for i, r := range results {
		if i > 0 {
			if _, err := io.WriteString(w, "\f\n"); err != nil {
				return err
			}
		}
		var b strings.Builder
		b.WriteString(r.Outcome.Body)
		b.WriteString("\n")
		if r.Outcome.HasSignature {
			b.WriteString("-- \n")
			b.WriteString(r.Outcome.Signature)
			b.WriteString("\n")
		}
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

func writeMarkdown(w io.Writer, results []Result) error {
	var b strings.Builder
	b.WriteString("# Signature extraction\n\n")
	withSig := 0
	for _, r := range results {
		if r.Outcome.HasSignature {
			withSig++
		}
	}
	fmt.Fprintf(&b, "Messages: %d, with signature: %d\n", len(results), withSig)
	for _, r := range results {
		title := r.Message.Source
		if s := strings.TrimSpace(r.Message.Subject); s != "" {
			title += ": " + s
		}
		fmt.Fprintf(&b, "\n## %s\n\n", title)
		if r.Message.From != "" {
			fmt.Fprintf(&b, "From: %s\n\n", r.Message.From)
		}
		b.WriteString("### Body\n\n")
		writeFenced(&b, r.Outcome.Body)
		b.WriteString("\n### Signature\n\n")
		if r.Outcome.HasSignature {
			writeFenced(&b, r.Outcome.Signature)
		} else {
			b.WriteString("_none_\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// writeFenced writes s in a code fence longer than any backtick run inside it.
func writeFenced(b *strings.Builder, s string) {
	fence := "```"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	b.WriteString(fence + "\n")
	b.WriteString(s)
	if !strings.HasSuffix(s, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(fence + "\n")
}
