package classifier

import "context"

// Encoding is the model-specific representation of an input text.
type Encoding struct {
	Text     string
	InputIDs []int
}

// Classifier maps text to per-class logits. Implementations own their
// tokenization; callers never inspect an Encoding.
type Classifier interface {
	Encode(text string) (Encoding, error)
	Forward(ctx context.Context, enc Encoding) ([]float64, error)
	NumClasses() int
	// ConcurrentSafe reports whether Encode and Forward may run in parallel.
	ConcurrentSafe() bool
	Close() error
	GetModelInfo() map[string]interface{}
}
