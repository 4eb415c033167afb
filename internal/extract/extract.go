package extract

import (
    "strings"

    "github.com/PuerkitoBio/goquery"
    "golang.org/x/net/html"
    "golang.org/x/text/unicode/norm"
)

// Document is the plain text rendition of an HTML mail part.
type Document struct {
    Title string
    Text  string
    // Marked counts signature containers that got a "--" delimiter line.
    Marked int
}

// FromHTML renders an HTML mail body as plain text. Block elements and <br>
// start new lines, list items are bulleted, and link targets are kept next
// to their text. Scripts, styles and comments are dropped. Signature
// containers written by common mail clients are preceded by a "--" line.
// ok is false when the input has no body to render.
func FromHTML(input []byte) (Document, bool) {
    doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(input)))
    if err != nil {
        return Document{}, false
    }
    body := doc.Find("body").First()
    if body.Length() == 0 {
        return Document{}, false
    }
    marked := markSignatureBlocks(doc)
    var b strings.Builder
    collectText(&b, body.Nodes[0], false)
    text := normalizeWhitespace(norm.NFKC.String(b.String()))
    title := strings.TrimSpace(doc.Find("head title").First().Text())
    return Document{Title: title, Text: text, Marked: marked}, true
}

// DocumentToText converts an HTML string into plain text.
func DocumentToText(s string) (string, bool) {
    doc, ok := FromHTML([]byte(s))
    if !ok {
        return "", false
    }
    return doc.Text, true
}

func collectText(b *strings.Builder, n *html.Node, inPre bool) {
    if n.Type == html.ElementNode {
        switch strings.ToLower(n.Data) {
        case "script", "style", "noscript", "head", "template":
            return
        case "pre":
            inPre = true
            lineBreak(b)
        case "br":
            b.WriteString("\n")
        case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "table", "tr", "blockquote", "hr":
            lineBreak(b)
        case "li":
            lineBreak(b)
            b.WriteString("* ")
        }
    }

    if n.Type == html.TextNode {
        data := n.Data
        if !inPre {
            // source newlines inside inline text are not line breaks in a mail client
            data = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(data)
        }
        b.WriteString(data)
    }

    for c := n.FirstChild; c != nil; c = c.NextSibling {
        collectText(b, c, inPre)
    }

    if n.Type == html.ElementNode {
        switch strings.ToLower(n.Data) {
        case "p", "h1", "h2", "h3", "h4", "h5", "h6":
            lineBreak(b)
            b.WriteString("\n")
        case "div", "pre", "table", "tr", "blockquote", "ul", "ol", "li":
            lineBreak(b)
        case "a":
            if href := attr(n, "href"); href != "" && !strings.HasPrefix(href, "#") && href != textOf(n) {
                b.WriteString(" (" + href + ")")
            }
        }
    }
}

// lineBreak ends the current line unless it is already empty. Trailing
// blanks do not count as content.
func lineBreak(b *strings.Builder) {
    s := strings.TrimRight(b.String(), " \t")
    if s == "" || strings.HasSuffix(s, "\n") {
        return
    }
    b.WriteString("\n")
}

func attr(n *html.Node, key string) string {
    for _, a := range n.Attr {
        if strings.EqualFold(a.Key, key) {
            return strings.TrimSpace(a.Val)
        }
    }
    return ""
}

func textOf(n *html.Node) string {
    var b strings.Builder
    var walk func(*html.Node)
    walk = func(cur *html.Node) {
        if cur.Type == html.TextNode {
            b.WriteString(cur.Data)
        }
        for c := cur.FirstChild; c != nil; c = c.NextSibling {
            walk(c)
        }
    }
    walk(n)
    return strings.TrimSpace(b.String())
}

func normalizeWhitespace(s string) string {
    // Collapse multiple spaces and blank lines
    lines := strings.Split(s, "\n")
    out := make([]string, 0, len(lines))
    for _, line := range lines {
        trimmed := strings.TrimSpace(line)
        if trimmed == "" {
            // Keep at most one consecutive blank
            if len(out) > 0 && out[len(out)-1] == "" {
                continue
            }
            out = append(out, "")
            continue
        }
        out = append(out, collapseSpaces(trimmed))
    }
    for len(out) > 0 && out[0] == "" {
        out = out[1:]
    }
    for len(out) > 0 && out[len(out)-1] == "" {
        out = out[:len(out)-1]
    }
    return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
    var b strings.Builder
    lastSpace := false
    for _, r := range s {
        if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
            if !lastSpace {
                b.WriteByte(' ')
                lastSpace = true
            }
            continue
        }
        b.WriteRune(r)
        lastSpace = false
    }
    return b.String()
}
