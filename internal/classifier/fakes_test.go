package classifier

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
)

var labels = []Prediction{
	{Label: "tabby cat", Confidence: 0.61},
	{Label: "tiger cat", Confidence: 0.22},
	{Label: "egyptian cat", Confidence: 0.09},
	{Label: "lynx", Confidence: 0.04},
	{Label: "remote control", Confidence: 0.02},
	{Label: "carton", Confidence: 0.01},
	{Label: "paper towel", Confidence: 0.005},
}

func solidImage(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

type fakeModel struct {
	mu     sync.Mutex
	seen   []image.Image
	ks     []int
	err    error
	failOn int // 1-based call number that fails with err; 0 fails every call when err is set
	calls  int
}

func (m *fakeModel) Classify(_ context.Context, img image.Image, k int) ([]Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.seen = append(m.seen, img)
	m.ks = append(m.ks, k)
	if m.err != nil && (m.failOn == 0 || m.failOn == m.calls) {
		return nil, m.err
	}
	if k > len(labels) {
		k = len(labels)
	}
	out := make([]Prediction, k)
	copy(out, labels[:k])
	return out, nil
}

func (m *fakeModel) images() []image.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]image.Image(nil), m.seen...)
}

type fakeLoader struct {
	model   Model
	err     error
	release chan struct{} // when non-nil, Load blocks until it is closed

	mu      sync.Mutex
	version float64
	alpha   float64
	loads   int
}

func (l *fakeLoader) Load(_ context.Context, version, alpha float64) (Model, error) {
	if l.release != nil {
		<-l.release
	}
	l.mu.Lock()
	l.version, l.alpha = version, alpha
	l.loads++
	l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	return l.model, nil
}

type fakeSource struct {
	frame image.Image

	mu        sync.Mutex
	listeners []func()
	subscribe int
}

func (s *fakeSource) Frame() (image.Image, error) {
	if s.frame == nil {
		return nil, errors.New("no frame yet")
	}
	return s.frame, nil
}

func (s *fakeSource) OnLoadStart(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribe++
	s.listeners = append(s.listeners, fn)
}

func (s *fakeSource) subscriptions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribe
}

func (s *fakeSource) fire() {
	s.mu.Lock()
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// wrapper mimics a third-party element wrapper.
type wrapper struct {
	elt any
}

func (w wrapper) Element() any { return w.elt }
