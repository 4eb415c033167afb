package extract

import (
    "strings"

    "github.com/PuerkitoBio/goquery"
)

// signatureSelectors match the containers mail clients wrap signatures in:
// Gmail, Outlook on the web, Apple Mail, Thunderbird and Yahoo.
const signatureSelectors = `.gmail_signature, [data-smartmail="gmail_signature"], #Signature, #AppleMailSignature, .moz-signature, #ymail_android_signature`

// markSignatureBlocks inserts a "--" line in front of each outermost
// signature container that does not already start with one, and returns how
// many were marked.
func markSignatureBlocks(doc *goquery.Document) int {
    marked := 0
    doc.Find(signatureSelectors).Each(func(_ int, s *goquery.Selection) {
        if s.ParentsFiltered(signatureSelectors).Length() > 0 {
            return
        }
        text := strings.TrimSpace(s.Text())
        if text == "" || strings.HasPrefix(text, "--") {
            return
        }
        s.BeforeHtml("<div>--</div>")
        marked++
    })
    return marked
}
