// Package message reads mail bodies from plain text, HTML, RFC 5322 and
// mbox sources into plain text ready for signature extraction.
package message

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/emersion/go-mbox"
	"github.com/jhillyerd/enmime"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/hyperifyio/mailsig/internal/extract"
)

// Kind selects how an input is parsed.
type Kind string

const (
	KindAuto Kind = "auto"
	KindText Kind = "text"
	KindHTML Kind = "html"
	KindEML  Kind = "eml"
	KindMbox Kind = "mbox"
)

var (
	// ErrUnknownKind is returned for a kind name that is not supported.
	ErrUnknownKind = errors.New("unknown input kind")
	// ErrNoText is returned when a message has no convertible body.
	ErrNoText = errors.New("message has no text body")
)

// Message is one mail body in plain text.
type Message struct {
	// Source names the input, with "#n" appended for mbox entries.
	Source  string
	Subject string
	From    string
	Body    string
	// HTML is set when Body was converted from an HTML part.
	HTML bool
}

// Options tune Read.
type Options struct {
	Kind Kind
	// Charset is the declared charset of raw text or HTML input. Empty means
	// UTF-8 for text and sniffing for HTML.
	Charset string
	// Extractor converts HTML bodies; defaults to extract.HTMLExtractor.
	Extractor extract.Extractor
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", KindAuto:
		return KindAuto, nil
	case KindText, KindHTML, KindEML, KindMbox:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// DetectKind picks a kind from the file extension.
func DetectKind(name string) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".eml":
		return KindEML
	case ".mbox", ".mbx":
		return KindMbox
	case ".html", ".htm":
		return KindHTML
	default:
		return KindText
	}
}

// Read parses every message found in r. Unreadable entries of an mbox are
// logged and skipped; other parse failures are returned.
func Read(ctx context.Context, name string, r io.Reader, opts Options) ([]Message, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if opts.Extractor == nil {
		opts.Extractor = extract.HTMLExtractor{}
	}
	kind := opts.Kind
	if kind == "" || kind == KindAuto {
		kind = DetectKind(name)
	}

	switch kind {
	case KindText:
		text, err := decode(data, opts.Charset, "text/plain")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return []Message{{Source: name, Body: text}}, nil
	case KindHTML:
		msg, err := readHTML(name, data, opts)
		if err != nil {
			return nil, err
		}
		return []Message{msg}, nil
	case KindEML:
		msg, err := readEML(name, data, opts.Extractor)
		if err != nil {
			return nil, err
		}
		return []Message{msg}, nil
	case KindMbox:
		return readMbox(ctx, name, data, opts.Extractor)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func readHTML(name string, data []byte, opts Options) (Message, error) {
	text, err := decode(data, opts.Charset, "text/html")
	if err != nil {
		return Message{}, fmt.Errorf("%s: %w", name, err)
	}
	doc, ok := opts.Extractor.Extract([]byte(text))
	if !ok {
		return Message{}, fmt.Errorf("%s: %w", name, ErrNoText)
	}
	return Message{Source: name, Subject: doc.Title, Body: doc.Text, HTML: true}, nil
}

func readEML(name string, data []byte, ex extract.Extractor) (Message, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(data))
	if err != nil {
		return Message{}, fmt.Errorf("parse %s: %w", name, err)
	}
	msg := Message{
		Source:  name,
		Subject: env.GetHeader("Subject"),
		From:    env.GetHeader("From"),
		Body:    env.Text,
	}
	if strings.TrimSpace(msg.Body) == "" && strings.TrimSpace(env.HTML) != "" {
		doc, ok := ex.Extract([]byte(env.HTML))
		if !ok {
			return Message{}, fmt.Errorf("%s: %w", name, ErrNoText)
		}
		msg.Body = doc.Text
		msg.HTML = true
	}
	return msg, nil
}

func readMbox(ctx context.Context, name string, data []byte, ex extract.Extractor) ([]Message, error) {
	reader := mbox.NewReader(bytes.NewReader(data))
	var out []Message
	for i := 1; ; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		r, err := reader.NextMessage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("mbox %s: %w", name, err)
		}
		raw, err := io.ReadAll(r)
		if err != nil {
			log.Warn().Err(err).Str("source", name).Int("index", i).Msg("mbox entry unreadable; skipping")
			continue
		}
		msg, err := readEML(fmt.Sprintf("%s#%d", name, i), raw, ex)
		if err != nil {
			log.Warn().Err(err).Str("source", name).Int("index", i).Msg("mbox entry unparsable; skipping")
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// decode converts data into UTF-8. A declared charset wins; HTML is sniffed
// from BOM and meta tags otherwise; text defaults to UTF-8.
func decode(data []byte, declared, contentType string) (string, error) {
	var enc encoding.Encoding
	switch {
	case strings.TrimSpace(declared) != "":
		e, err := htmlindex.Get(declared)
		if err != nil {
			return "", fmt.Errorf("charset %q: %w", declared, err)
		}
		enc = e
	case contentType == "text/html":
		enc, _, _ = charset.DetermineEncoding(data, contentType)
	default:
		return string(data), nil
	}
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	return string(out), nil
}
