package patterns

import (
    "regexp"
    "sync"
)

// Set is a frozen, compiled view of a Builder. It never changes after Freeze
// and is safe for concurrent reads.
type Set struct {
    signature      *regexp.Regexp
    footer         *regexp.Regexp
    signatureWords *regexp.Regexp
    footerWords    *regexp.Regexp
    footerLines    []string
    footerRatio    float64
    limits         Limits
    source         *Builder
}

// Signature returns the compiled signature content pattern.
func (s *Set) Signature() *regexp.Regexp { return s.signature }

// Footer returns the compiled footer pattern.
func (s *Set) Footer() *regexp.Regexp { return s.footer }

// SignatureWords returns the compiled sign-off vocabulary pattern. The
// extraction pipeline does not read it; it is kept for callers that score
// lines by vocabulary.
func (s *Set) SignatureWords() *regexp.Regexp { return s.signatureWords }

// FooterWords returns the compiled footer vocabulary pattern. Like
// SignatureWords it is not read by the extraction pipeline.
func (s *Set) FooterWords() *regexp.Regexp { return s.footerWords }

// FooterLines returns a copy of the known footer exemplars.
func (s *Set) FooterLines() []string { return append([]string(nil), s.footerLines...) }

func (s *Set) FooterRatio() float64 { return s.footerRatio }

func (s *Set) Limits() Limits { return s.limits }

// WithOverride derives a new Set: fn receives a copy of the builder this Set
// was frozen from. The receiver is left untouched.
func (s *Set) WithOverride(fn func(*Builder) error) (*Set, error) {
    b := s.source.Clone()
    if fn != nil {
        if err := fn(b); err != nil {
            return nil, err
        }
    }
    return b.Freeze()
}

var (
    defaultOnce sync.Once
    defaultSet  *Set
)

// Default returns the Set built from stock patterns and limits.
func Default() *Set {
    defaultOnce.Do(func() {
        s, err := NewBuilder().Freeze()
        if err != nil {
            panic("patterns: default set does not compile: " + err.Error())
        }
        defaultSet = s
    })
    return defaultSet
}
