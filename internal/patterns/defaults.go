package patterns

// Registry names. Each one addresses a filter chain that contributors can
// extend at startup.
const (
    SignaturePatterns = "email_signature_patterns"
    FooterPatterns    = "email_footer_patterns"
    SignatureWords    = "email_signature_words"
    FooterWords       = "email_footer_words"
    FooterLines       = "email_footer_lines"
    FooterLinesRatio  = "email_footer_lines_ratio"
)

// Default numeric parameters.
const (
    DefaultTooLongSignatureLine  = 60
    DefaultSignatureMaxLines     = 15
    DefaultSignatureLineMaxChars = 40
    DefaultFooterLinesRatio      = 0.75
)

// Patterns are written in verbose form: literal whitespace and # comments
// outside character classes are ignored. Use [ ] for a literal space.

// DefaultSignature matches the first line of a signature block by common
// sign-off words or a dash delimiter.
const DefaultSignature = `
    ^[\s]*--*[\s]*[a-z \.]*$
    |
    ^thanks[\s,!\.]*$
    |
    ^thanks*[\s]+you[\s,!\.]*$
    |
    ^regards[\s,!\.]*$
    |
    ^cheers[\s,!\.]*$
    |
    ^best[a-z\s,!\.]*$
    |
    ^sincerely[a-z,!\.]*$
`

// DefaultFooter matches client generated footer lines.
const DefaultFooter = `
    ^sent[ ]{1}from[ ]{1}my[\s,!\w]*$
    |
    ^sent[ ]from[ ]Mailbox[ ]for[ ]iPhone.*$
    |
    ^sent[ ]from[ ]a[ ]phone.*$
    |
    ^sent[ ]([\S]*[ ])?from[ ]my[ ]BlackBerry.*$
    |
    ^Enviado[ ]desde[ ]mi[ ]([\S]+[ ]){0,2}BlackBerry.*$
`

const DefaultSignatureWords = `
    (T|t)hank.*[,\.!]?
    |
    (B|b)est[,\.]?
    |
    (R|r)egards[,\.!]?
    |
    ^(C|c)heers[,\.!]?
    |
    ^sent[ ]{1}from[ ]{1}my[\s,!\w]*$
    |
    BR
    |
    ^(S|s)incerely[,\.]?
`

const DefaultFooterWords = DefaultFooter

// defaultPatterns maps each pattern chain to its seed value.
var defaultPatterns = map[string]string{
    SignaturePatterns: DefaultSignature,
    FooterPatterns:    DefaultFooter,
    SignatureWords:    DefaultSignatureWords,
    FooterWords:       DefaultFooterWords,
}

// Limits are the positional thresholds of the candidate window.
type Limits struct {
    // TooLongSignatureLine is the stripped length above which a line can not
    // be part of a signature.
    TooLongSignatureLine int
    // SignatureMaxLines caps the candidate window.
    SignatureMaxLines int
    // SignatureLineMaxChars is reserved for stricter line-length policies.
    SignatureLineMaxChars int
}

// DefaultLimits returns the stock thresholds.
func DefaultLimits() Limits {
    return Limits{
        TooLongSignatureLine:  DefaultTooLongSignatureLine,
        SignatureMaxLines:     DefaultSignatureMaxLines,
        SignatureLineMaxChars: DefaultSignatureLineMaxChars,
    }
}
