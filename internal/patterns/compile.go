package patterns

import (
    "errors"
    "fmt"
    "regexp"
    "strings"
)

// ErrInvalidPattern is returned when a composed pattern does not compile.
var ErrInvalidPattern = errors.New("invalid pattern")

// Compile turns a verbose pattern into a case-insensitive, multiline regexp
// where "." also matches newlines. The pattern is wrapped so a match runs from
// the matched line to the end of the text.
//
// The RE2 engine rejects backreferences and lookaround, and matches in time
// linear to the input, so a compiled pattern can not backtrack catastrophically.
// \w, \d and \s are widened to their Unicode meaning, see UnicodeClasses.
func Compile(pattern string) (*regexp.Regexp, error) {
    body := UnicodeClasses(StripVerbose(pattern))
    if strings.TrimSpace(body) == "" {
        return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
    }
    re, err := regexp.Compile(`(?ims)((?:` + body + `).*)`)
    if err != nil {
        return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
    }
    return re, nil
}

// StripVerbose removes literal whitespace and # comments that appear outside
// character classes. Escaped characters are kept as written.
func StripVerbose(pattern string) string {
    var b strings.Builder
    b.Grow(len(pattern))
    inClass := false
    classStart := 0
    rs := []rune(pattern)
    for i := 0; i < len(rs); i++ {
        r := rs[i]
        if r == '\\' {
            b.WriteRune(r)
            if i+1 < len(rs) {
                i++
                b.WriteRune(rs[i])
            }
            continue
        }
        if inClass {
            b.WriteRune(r)
            // a ] directly after [ or [^ is a literal
            if r == ']' && i > classStart {
                inClass = false
            }
            continue
        }
        switch r {
        case ' ', '\t', '\n', '\r', '\f', '\v':
            continue
        case '#':
            for i+1 < len(rs) && rs[i+1] != '\n' {
                i++
            }
            continue
        case '[':
            inClass = true
            classStart = i + 1
            if i+1 < len(rs) && rs[i+1] == '^' {
                classStart = i + 2
            }
        }
        b.WriteRune(r)
    }
    return b.String()
}

// unicodeShorthand maps the ASCII-only RE2 shorthand classes to Unicode ones.
// The class form is used inside brackets, the bare form outside. Negated
// shorthands are only rewritten outside brackets.
var unicodeShorthand = map[rune]struct{ bare, class string }{
    'w': {`[\p{L}\p{N}_]`, `\p{L}\p{N}_`},
    'd': {`\p{Nd}`, `\p{Nd}`},
    's': {`[\s\v\p{Z}]`, `\s\v\p{Z}`},
    'W': {`[^\p{L}\p{N}_]`, ""},
    'D': {`\P{Nd}`, ""},
    'S': {`[^\s\v\p{Z}]`, ""},
}

// UnicodeClasses rewrites \w, \d and \s (and their negations outside
// brackets) so that letters, digits and spaces outside ASCII match too.
func UnicodeClasses(pattern string) string {
    var b strings.Builder
    b.Grow(len(pattern))
    inClass := false
    classStart := 0
    rs := []rune(pattern)
    for i := 0; i < len(rs); i++ {
        r := rs[i]
        if r == '\\' && i+1 < len(rs) {
            i++
            sub, ok := unicodeShorthand[rs[i]]
            switch {
            case ok && !inClass:
                b.WriteString(sub.bare)
            case ok && sub.class != "":
                b.WriteString(sub.class)
            default:
                b.WriteRune(r)
                b.WriteRune(rs[i])
            }
            continue
        }
        b.WriteRune(r)
        if inClass {
            if r == ']' && i > classStart {
                inClass = false
            }
            continue
        }
        if r == '[' {
            inClass = true
            classStart = i + 1
            if i+1 < len(rs) && rs[i+1] == '^' {
                classStart = i + 2
            }
        }
    }
    return b.String()
}
