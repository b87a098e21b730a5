package classifier

import (
	"context"
	"image"
)

// Prediction is a single ranked label produced by a model.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float32 `json:"confidence"`
}

// Callback receives the outcome of a load or predict operation. At
// construction time it is invoked with a nil slice.
type Callback func(predictions []Prediction, err error)

// Loader is the load capability of a model library.
type Loader interface {
	// Load returns a model ready for classification.
	Load(ctx context.Context, version, alpha float64) (Model, error)
}

// Model is a loaded model handle.
type Model interface {
	// Classify returns at most k predictions ordered by descending confidence.
	Classify(ctx context.Context, img image.Image, k int) ([]Prediction, error)
}

// Source is a playable video source.
type Source interface {
	// Frame returns the most recent frame.
	Frame() (image.Image, error)

	// OnLoadStart registers fn to be called once the source starts producing
	// frames.
	OnLoadStart(fn func())
}

// ElementWrapper is implemented by third-party wrappers that carry an
// underlying image or video element.
type ElementWrapper interface {
	Element() any
}
