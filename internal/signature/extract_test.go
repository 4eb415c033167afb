package signature

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/mailsig/internal/extract"
	"github.com/hyperifyio/mailsig/internal/patterns"
)

func TestExtractSignature_Scenarios(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		wantBody string
		wantSig  string
		hasSig   bool
	}{
		{
			name:     "dash delimited regards",
			body:     "Hey man! How r u?\n\n--\nRegards,\nRoman",
			wantBody: "Hey man! How r u?",
			wantSig:  "--\nRegards,\nRoman",
			hasSig:   true,
		},
		{
			name:     "single line",
			body:     "Hey man!",
			wantBody: "Hey man!",
		},
		{
			name:     "crlf body keeps delimiter",
			body:     "Hey man! How r u?\r\n\r\n--\r\nRegards,\r\nRoman\r\n",
			wantBody: "Hey man! How r u?",
			wantSig:  "--\r\nRegards,\r\nRoman",
			hasSig:   true,
		},
		{
			name:     "dash prefixed name line",
			body:     "Hi,\n\nsee below\n-- Bob\nACME Corp",
			wantBody: "Hi,\n\nsee below",
			wantSig:  "-- Bob\nACME Corp",
			hasSig:   true,
		},
		{
			name:     "two dash lines stop the run",
			body:     "Hi team,\n\nPlease review:\n- item one\n-- reviewers\nThanks,\nBob",
			wantBody: "Hi team,\n\nPlease review:\n- item one\n-- reviewers",
			wantSig:  "Thanks,\nBob",
			hasSig:   true,
		},
		{
			name:     "no sign-off",
			body:     "Hello\n\nThe build is green.\nShip it",
			wantBody: "Hello\n\nThe build is green.\nShip it",
		},
		{
			name:     "footer only",
			body:     "Running late, see you soon\nSent from my iPhone",
			wantBody: "Running late, see you soon",
			wantSig:  "Sent from my iPhone",
			hasSig:   true,
		},
		{
			name:     "footer only after several lines",
			body:     "Hey,\n\nsee attached.\nSent from my iPhone",
			wantBody: "Hey,\n\nsee attached.",
			wantSig:  "Sent from my iPhone",
			hasSig:   true,
		},
		{
			name:     "signature and footer",
			body:     "Hey,\nsee attached.\n\nThanks,\nBob\nSent from my iPhone",
			wantBody: "Hey,\nsee attached.",
			wantSig:  "Thanks,\nBob\nSent from my iPhone",
			hasSig:   true,
		},
		{
			name:     "footer with accented device name",
			body:     "Merci pour le document.\n\nSent from my Téléphone",
			wantBody: "Merci pour le document.",
			wantSig:  "Sent from my Téléphone",
			hasSig:   true,
		},
		{
			name:     "whitespace only",
			body:     "  \n\n \t ",
			wantBody: "",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out := ExtractSignature(c.body)
			if out.Body != c.wantBody {
				t.Fatalf("body: got %q want %q", out.Body, c.wantBody)
			}
			if out.HasSignature != c.hasSig || out.Signature != c.wantSig {
				t.Fatalf("signature: got (%v, %q) want (%v, %q)", out.HasSignature, out.Signature, c.hasSig, c.wantSig)
			}
		})
	}
}

func TestExtractSignature_LongLineBreaksRun(t *testing.T) {
	long := strings.Repeat("x", patterns.DefaultTooLongSignatureLine+1)

	out := ExtractSignature("Hi,\n\n--\nBob Smith\nACME")
	if !out.HasSignature || out.Signature != "--\nBob Smith\nACME" {
		t.Fatalf("expected dash signature without long line, got %+v", out)
	}

	body := "Hi,\n\n--\n" + long + "\nBob Smith\nACME"
	out = ExtractSignature(body)
	if out.HasSignature {
		t.Fatalf("long line must stop the run before the dash line, got %+v", out)
	}
	if out.Body != body {
		t.Fatalf("expected body unchanged, got %q", out.Body)
	}
}

func TestExtractSignature_MaxLinesWindow(t *testing.T) {
	// Sign-off sits above the last SignatureMaxLines lines, so it is out of reach.
	var b strings.Builder
	b.WriteString("Hello\n\nThanks,\n")
	for i := 0; i < patterns.DefaultSignatureMaxLines; i++ {
		b.WriteString("line\n")
	}
	out := ExtractSignature(b.String())
	if out.HasSignature {
		t.Fatalf("expected no signature beyond the window, got %q", out.Signature)
	}
}

func TestExtractSignature_FuzzyFooterExemplar(t *testing.T) {
	set, err := patterns.Default().WithOverride(func(b *patterns.Builder) error {
		return b.RegisterFooterLinesFilter("outlook", func(lines []string, _ patterns.Args) []string {
			return append(lines, "Get Outlook for iOS")
		}, 0)
	})
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	e := New(set)
	out := e.ExtractSignature("Hi Ann,\n\nSee you at 5.\n\nGet Outlook for Android")
	if out.Body != "Hi Ann,\n\nSee you at 5." || out.Signature != "Get Outlook for Android" {
		t.Fatalf("unexpected outcome %+v", out)
	}

	// The default set has no exemplars and keeps the line.
	out = ExtractSignature("Hi Ann,\n\nSee you at 5.\n\nGet Outlook for Android")
	if out.HasSignature {
		t.Fatalf("default set should not know the exemplar, got %+v", out)
	}
}

func TestExtractSignature_CustomSignaturePattern(t *testing.T) {
	set, err := patterns.Default().WithOverride(func(b *patterns.Builder) error {
		return b.RegisterPatternFilter(patterns.SignaturePatterns, "cordially", func(p string, _ patterns.Args) string {
			return p + `| ^cordially[\s,!\.]*$`
		}, 0)
	})
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	out := New(set).ExtractSignature("Dear board,\n\nThe minutes are attached.\n\nCordially,\nAnn")
	if out.Body != "Dear board,\n\nThe minutes are attached." || out.Signature != "Cordially,\nAnn" {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestExtractSignature_EmptyMatchIsNoSignature(t *testing.T) {
	set, err := patterns.Default().WithOverride(func(b *patterns.Builder) error {
		return b.RegisterPatternFilter(patterns.SignaturePatterns, "optional", func(p string, _ patterns.Args) string {
			return p + `|x?`
		}, 0)
	})
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	e := New(set)
	long := strings.Repeat("y", patterns.DefaultTooLongSignatureLine+1)
	for _, body := range []string{"Hello", "Hello there\n" + long, "Hello\n\n   \n"} {
		out := e.ExtractSignature(body)
		if out.HasSignature || out.Body != strings.TrimSpace(body) {
			t.Fatalf("body %q: expected stripped body without signature, got %+v", body, out)
		}
	}

	// the default alternatives still match
	out := e.ExtractSignature("Hi,\n\nsee you.\n\nThanks,\nBob")
	if out.Signature != "Thanks,\nBob" {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestExtractSignature_FailsOpenOnNonSuffixMatch(t *testing.T) {
	// A contributor that closes the wrapping group early, so the match no
	// longer runs to the end of the candidate.
	set, err := patterns.Default().WithOverride(func(b *patterns.Builder) error {
		return b.RegisterPatternFilter(patterns.SignaturePatterns, "truncating", func(string, patterns.Args) string {
			return `^thanks$)(?:x)?)(?-s:(?:`
		}, 0)
	})
	if err != nil {
		t.Fatalf("override: %v", err)
	}

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	body := "  Hello there\n\nThanks\nBob\n"
	out := New(set).ExtractSignature(body)
	if out.HasSignature || out.Body != body {
		t.Fatalf("expected original body back, got %+v", out)
	}
	if !strings.Contains(buf.String(), "extracting signature failed") {
		t.Fatalf("expected the fault to be logged, got %q", buf.String())
	}
}

func TestExtractHTML(t *testing.T) {
	e := New(nil)
	toText := func(html string) (string, bool) {
		return strings.NewReplacer("<p>", "", "</p>", "\n", "<br>", "\n").Replace(html), true
	}
	out := e.ExtractHTML("<p>Hi</p><p>Report attached.</p><p>Thanks,<br>Bob</p>", toText)
	if out.Body != "Hi\nReport attached." || out.Signature != "Thanks,\nBob" {
		t.Fatalf("unexpected outcome %+v", out)
	}

	failing := func(string) (string, bool) { return "", false }
	if out := e.ExtractHTML("<p>x</p>", failing); out.HasSignature || out.Body != "<p>x</p>" {
		t.Fatalf("failed conversion must keep input, got %+v", out)
	}
}

func TestExtractHTML_GmailSignatureContainer(t *testing.T) {
	html := `<div dir="ltr"><div>Attached is the draft we discussed on Monday, with the changes from legal.</div>` +
		`<div><br></div><div class="gmail_signature"><div>Jane Doe</div><div>ACME Corp</div></div></div>`
	out := New(nil).ExtractHTML(html, extract.DocumentToText)
	if out.Body != "Attached is the draft we discussed on Monday, with the changes from legal." {
		t.Fatalf("unexpected body %q", out.Body)
	}
	if out.Signature != "--\nJane Doe\nACME Corp" {
		t.Fatalf("unexpected signature %q", out.Signature)
	}
}

func TestOutcome_Pair(t *testing.T) {
	body, sig := CleanOnly("a").Pair()
	if body != "a" || sig != nil {
		t.Fatalf("unexpected pair %q %v", body, sig)
	}
	body, sig = CleanWithSignature("a", "b").Pair()
	if body != "a" || sig == nil || *sig != "b" {
		t.Fatalf("unexpected pair %q %v", body, sig)
	}
}

var sampleLines = []string{
	"", "", "Hello", "Thanks,", "Regards", "--", "-- Bob", "- item", "Bob",
	"Sent from my iPhone", "Cheers!", strings.Repeat("long ", 15), "ACME Corp | +1 555 0100",
	"best wishes", "   ", "see you", "-----",
}

func randomBody(r *rand.Rand) string {
	n := r.Intn(12)
	lines := make([]string, n)
	for i := range lines {
		lines[i] = sampleLines[r.Intn(len(sampleLines))]
	}
	return strings.Join(lines, "\n")
}

func TestExtractSignature_FailOpenPrefix(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		body := randomBody(r)
		out := ExtractSignature(body)
		if !strings.HasPrefix(strings.TrimSpace(body), out.Body) {
			t.Fatalf("body %q: clean %q is not a prefix", body, out.Body)
		}
		if out.HasSignature && out.Signature == "" {
			t.Fatalf("body %q: empty signature reported", body)
		}
	}
}

func TestExtractSignature_NoSignatureIsIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		out := ExtractSignature(randomBody(r))
		if out.HasSignature {
			continue
		}
		again := ExtractSignature(out.Body)
		if again.HasSignature || again.Body != out.Body {
			t.Fatalf("re-running on %q changed outcome to %+v", out.Body, again)
		}
	}
}

func TestExtractSignature_ShortMessage(t *testing.T) {
	for _, body := range []string{"", "Hello", "\n\n  Hello  \n\n", "-- Bob", "Sent from my iPhone"} {
		out := ExtractSignature(body)
		if out.HasSignature || out.Body != strings.TrimSpace(body) {
			t.Fatalf("body %q: expected stripped body without signature, got %+v", body, out)
		}
		cand := SelectCandidate(SplitLines(strings.TrimSpace(body)), patterns.Default())
		if len(cand.Lines) != 0 || len(cand.Footer) != 0 {
			t.Fatalf("body %q: expected empty candidate, got %+v", body, cand)
		}
	}
}
