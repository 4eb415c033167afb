package message

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const plainEML = "From: Bob <bob@example.com>\r\n" +
	"To: Ann <ann@example.com>\r\n" +
	"Subject: lunch\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Sure, noon works.\r\n" +
	"\r\n" +
	"Thanks,\r\n" +
	"Bob\r\n"

const htmlEML = "From: Ann <ann@example.com>\r\n" +
	"Subject: agenda\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<html><body><div>See you there.</div><div>--</div><div>Ann</div></body></html>\r\n"

func TestDetectKind(t *testing.T) {
	cases := map[string]Kind{
		"a.eml":        KindEML,
		"box.MBOX":     KindMbox,
		"page.htm":     KindHTML,
		"page.html":    KindHTML,
		"notes.txt":    KindText,
		"no-extension": KindText,
	}
	for name, want := range cases {
		if got := DetectKind(name); got != want {
			t.Fatalf("DetectKind(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind(""); err != nil || k != KindAuto {
		t.Fatalf("empty kind: got %q %v", k, err)
	}
	if k, err := ParseKind(" EML "); err != nil || k != KindEML {
		t.Fatalf("eml: got %q %v", k, err)
	}
	if _, err := ParseKind("pst"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestRead_PlainText(t *testing.T) {
	msgs, err := Read(context.Background(), "note.txt", strings.NewReader("Hi\n\nThanks,\nBob"), Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Body != "Hi\n\nThanks,\nBob" || msgs[0].Source != "note.txt" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}

func TestRead_TextWithDeclaredCharset(t *testing.T) {
	latin1 := []byte{'C', 'i', 'a', 'o', '\n', 'J', 'o', 's', 0xe9}
	msgs, err := Read(context.Background(), "note.txt", strings.NewReader(string(latin1)), Options{Charset: "iso-8859-1"})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if msgs[0].Body != "Ciao\nJosé" {
		t.Fatalf("expected decoded body, got %q", msgs[0].Body)
	}
	if _, err := Read(context.Background(), "note.txt", strings.NewReader("x"), Options{Charset: "no-such-charset"}); err == nil {
		t.Fatalf("expected error for unknown charset")
	}
}

func TestRead_HTMLSniffsMetaCharset(t *testing.T) {
	page := "<html><head><meta charset=\"iso-8859-1\"><title>Re</title></head><body><p>Merci</p><p>Ren\xe9</p></body></html>"
	msgs, err := Read(context.Background(), "mail.html", strings.NewReader(page), Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	m := msgs[0]
	if !m.HTML || m.Subject != "Re" || m.Body != "Merci\n\nRené" {
		t.Fatalf("unexpected message: %+v", m)
	}
}

func TestRead_EML(t *testing.T) {
	msgs, err := Read(context.Background(), "lunch.eml", strings.NewReader(plainEML), Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	m := msgs[0]
	if m.Subject != "lunch" || !strings.Contains(m.From, "bob@example.com") {
		t.Fatalf("headers not read: %+v", m)
	}
	if !strings.Contains(m.Body, "Thanks,") || !strings.Contains(m.Body, "Bob") {
		t.Fatalf("body not read: %q", m.Body)
	}
}

func TestRead_EMLHTMLOnlyBody(t *testing.T) {
	msgs, err := Read(context.Background(), "agenda", strings.NewReader(htmlEML), Options{Kind: KindEML})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(msgs[0].Body, "See you there.") || !strings.Contains(msgs[0].Body, "Ann") {
		t.Fatalf("expected text from html part, got %q", msgs[0].Body)
	}
}

func mboxOf(msgs ...string) string {
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString("From sender@example.com Mon Jan  1 00:00:00 2024\n")
		b.WriteString(strings.ReplaceAll(m, "\r\n", "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

func TestRead_Mbox(t *testing.T) {
	box := mboxOf(plainEML, htmlEML)
	msgs, err := Read(context.Background(), "inbox.mbox", strings.NewReader(box), Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Source != "inbox.mbox#1" || msgs[1].Source != "inbox.mbox#2" {
		t.Fatalf("unexpected sources %q %q", msgs[0].Source, msgs[1].Source)
	}
	if msgs[1].Subject != "agenda" {
		t.Fatalf("unexpected subject %q", msgs[1].Subject)
	}
}

func TestRead_MboxHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Read(ctx, "inbox.mbox", strings.NewReader(mboxOf(plainEML)), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
