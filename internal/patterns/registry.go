package patterns

import (
    "errors"
    "fmt"
    "math"
    "regexp"
    "sort"
    "strings"
    "sync"
)

var (
    // ErrUnknownFilter is returned when registering under a name that has no chain.
    ErrUnknownFilter = errors.New("unknown filter name")
    // ErrNilFilter is returned when registering a nil contributor or an empty ID.
    ErrNilFilter = errors.New("filter must have an id and a function")
    // ErrInvalidRatio is returned when the ratio chain leaves [0, 1].
    ErrInvalidRatio = errors.New("footer lines ratio must be within [0, 1]")
)

// Args carries optional context handed to every contributor of a chain.
type Args map[string]any

// PatternFilter transforms a verbose pattern string.
type PatternFilter func(pattern string, args Args) string

// LinesFilter transforms the list of known footer exemplar lines.
type LinesFilter func(lines []string, args Args) []string

// RatioFilter transforms the fuzzy footer similarity threshold.
type RatioFilter func(ratio float64, args Args) float64

type entry[T any] struct {
    id       string
    priority int
    fn       func(T, Args) T
}

// chain folds contributors in ascending priority; equal priorities keep
// registration order.
type chain[T any] struct {
    entries []entry[T]
}

func (c *chain[T]) add(id string, fn func(T, Args) T, priority int) {
    c.entries = append(c.entries, entry[T]{id: id, priority: priority, fn: fn})
    sort.SliceStable(c.entries, func(i, j int) bool {
        return c.entries[i].priority < c.entries[j].priority
    })
}

// remove drops the first contributor registered with id at priority.
func (c *chain[T]) remove(id string, priority int) bool {
    for i, e := range c.entries {
        if e.id == id && e.priority == priority {
            c.entries = append(c.entries[:i:i], c.entries[i+1:]...)
            return true
        }
    }
    return false
}

func (c *chain[T]) apply(v T, args Args) T {
    for _, e := range c.entries {
        v = e.fn(v, args)
    }
    return v
}

func (c *chain[T]) clone() *chain[T] {
    return &chain[T]{entries: append([]entry[T](nil), c.entries...)}
}

// Builder collects contributors and numeric limits. It is safe for concurrent
// use; registration is expected at startup and Freeze produces the immutable
// Set read by extraction.
type Builder struct {
    mu          sync.RWMutex
    limits      Limits
    patterns    map[string]*chain[string]
    footerLines *chain[[]string]
    footerRatio *chain[float64]
}

// NewBuilder returns a builder seeded with the default patterns and limits.
func NewBuilder() *Builder {
    b := &Builder{
        limits:      DefaultLimits(),
        patterns:    make(map[string]*chain[string], len(defaultPatterns)),
        footerLines: &chain[[]string]{},
        footerRatio: &chain[float64]{},
    }
    for name := range defaultPatterns {
        b.patterns[name] = &chain[string]{}
    }
    return b
}

// Clone returns an independent copy of the builder.
func (b *Builder) Clone() *Builder {
    b.mu.RLock()
    defer b.mu.RUnlock()
    return b.cloneLocked()
}

// WithLimits replaces the positional thresholds and returns the builder.
func (b *Builder) WithLimits(l Limits) *Builder {
    b.mu.Lock()
    b.limits = l
    b.mu.Unlock()
    return b
}

// Limits returns the current thresholds.
func (b *Builder) Limits() Limits {
    b.mu.RLock()
    defer b.mu.RUnlock()
    return b.limits
}

// RegisterPatternFilter adds fn to the named pattern chain. The composed
// pattern is compiled right away; a contributor producing an invalid pattern
// is not kept.
func (b *Builder) RegisterPatternFilter(name, id string, fn PatternFilter, priority int) error {
    if fn == nil || strings.TrimSpace(id) == "" {
        return ErrNilFilter
    }
    b.mu.Lock()
    defer b.mu.Unlock()
    c, ok := b.patterns[name]
    if !ok {
        return fmt.Errorf("%w: %q", ErrUnknownFilter, name)
    }
    c.add(id, fn, priority)
    if _, err := composePattern(c, defaultPatterns[name]); err != nil {
        c.remove(id, priority)
        return fmt.Errorf("register %s/%s: %w", name, id, err)
    }
    return nil
}

// UnregisterPatternFilter removes one contributor. Absent contributors are a
// no-op and report false.
func (b *Builder) UnregisterPatternFilter(name, id string, priority int) bool {
    b.mu.Lock()
    defer b.mu.Unlock()
    c, ok := b.patterns[name]
    if !ok {
        return false
    }
    return c.remove(id, priority)
}

// ApplyPatternFilters folds the named chain over initial. Names without a
// chain return initial unchanged.
func (b *Builder) ApplyPatternFilters(name, initial string, args Args) string {
    b.mu.RLock()
    defer b.mu.RUnlock()
    c, ok := b.patterns[name]
    if !ok {
        return initial
    }
    return c.apply(initial, args)
}

// RegisterFooterLinesFilter adds fn to the footer exemplar chain.
func (b *Builder) RegisterFooterLinesFilter(id string, fn LinesFilter, priority int) error {
    if fn == nil || strings.TrimSpace(id) == "" {
        return ErrNilFilter
    }
    b.mu.Lock()
    defer b.mu.Unlock()
    b.footerLines.add(id, fn, priority)
    if _, err := safeApply(b.footerLines, nil); err != nil {
        b.footerLines.remove(id, priority)
        return fmt.Errorf("register %s/%s: %w", FooterLines, id, err)
    }
    return nil
}

// UnregisterFooterLinesFilter removes one exemplar contributor.
func (b *Builder) UnregisterFooterLinesFilter(id string, priority int) bool {
    b.mu.Lock()
    defer b.mu.Unlock()
    return b.footerLines.remove(id, priority)
}

// ApplyFooterLinesFilters folds the exemplar chain over initial.
func (b *Builder) ApplyFooterLinesFilters(initial []string, args Args) []string {
    b.mu.RLock()
    defer b.mu.RUnlock()
    return b.footerLines.apply(append([]string(nil), initial...), args)
}

// RegisterRatioFilter adds fn to the similarity threshold chain. The composed
// ratio must stay within [0, 1].
func (b *Builder) RegisterRatioFilter(id string, fn RatioFilter, priority int) error {
    if fn == nil || strings.TrimSpace(id) == "" {
        return ErrNilFilter
    }
    b.mu.Lock()
    defer b.mu.Unlock()
    b.footerRatio.add(id, fn, priority)
    if _, err := composeRatio(b.footerRatio); err != nil {
        b.footerRatio.remove(id, priority)
        return fmt.Errorf("register %s/%s: %w", FooterLinesRatio, id, err)
    }
    return nil
}

// UnregisterRatioFilter removes one ratio contributor.
func (b *Builder) UnregisterRatioFilter(id string, priority int) bool {
    b.mu.Lock()
    defer b.mu.Unlock()
    return b.footerRatio.remove(id, priority)
}

// ApplyRatioFilters folds the ratio chain over initial.
func (b *Builder) ApplyRatioFilters(initial float64, args Args) float64 {
    b.mu.RLock()
    defer b.mu.RUnlock()
    return b.footerRatio.apply(initial, args)
}

// Freeze composes every chain and compiles the result into a Set.
func (b *Builder) Freeze() (*Set, error) {
    b.mu.RLock()
    defer b.mu.RUnlock()
    if err := validateLimits(b.limits); err != nil {
        return nil, err
    }
    compiled := make(map[string]*regexp.Regexp, len(b.patterns))
    for name, c := range b.patterns {
        re, err := composePattern(c, defaultPatterns[name])
        if err != nil {
            return nil, fmt.Errorf("%s: %w", name, err)
        }
        compiled[name] = re
    }
    lines, err := safeApply(b.footerLines, nil)
    if err != nil {
        return nil, fmt.Errorf("%s: %w", FooterLines, err)
    }
    ratio, err := composeRatio(b.footerRatio)
    if err != nil {
        return nil, fmt.Errorf("%s: %w", FooterLinesRatio, err)
    }
    return &Set{
        signature:      compiled[SignaturePatterns],
        footer:         compiled[FooterPatterns],
        signatureWords: compiled[SignatureWords],
        footerWords:    compiled[FooterWords],
        footerLines:    lines,
        footerRatio:    ratio,
        limits:         b.limits,
        source:         b.cloneLocked(),
    }, nil
}

func (b *Builder) cloneLocked() *Builder {
    out := &Builder{
        limits:      b.limits,
        patterns:    make(map[string]*chain[string], len(b.patterns)),
        footerLines: b.footerLines.clone(),
        footerRatio: b.footerRatio.clone(),
    }
    for name, c := range b.patterns {
        out.patterns[name] = c.clone()
    }
    return out
}

func validateLimits(l Limits) error {
    if l.TooLongSignatureLine <= 0 || l.SignatureMaxLines <= 0 || l.SignatureLineMaxChars <= 0 {
        return fmt.Errorf("limits must be positive: %+v", l)
    }
    return nil
}

// safeApply folds a chain and converts a contributor panic into an error.
func safeApply[T any](c *chain[T], initial T) (out T, err error) {
    defer func() {
        if r := recover(); r != nil {
            err = fmt.Errorf("contributor panicked: %v", r)
        }
    }()
    return c.apply(initial, nil), nil
}

func composePattern(c *chain[string], seed string) (*regexp.Regexp, error) {
    p, err := safeApply(c, seed)
    if err != nil {
        return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
    }
    return Compile(p)
}

func composeRatio(c *chain[float64]) (float64, error) {
    r, err := safeApply(c, DefaultFooterLinesRatio)
    if err != nil {
        return 0, err
    }
    if math.IsNaN(r) || r < 0 || r > 1 {
        return 0, fmt.Errorf("%w: got %v", ErrInvalidRatio, r)
    }
    return r, nil
}
