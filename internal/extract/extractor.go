package extract

// Extractor converts an HTML mail part into a plain text Document.
// Implementations should be deterministic and avoid side effects.
type Extractor interface {
    Extract(input []byte) (Document, bool)
}

// HTMLExtractor uses FromHTML.
type HTMLExtractor struct{}

func (HTMLExtractor) Extract(input []byte) (Document, bool) {
    return FromHTML(input)
}
