package classifier

import (
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFactory_New(t *testing.T) {
	t.Run("without callback returns the readiness signal", func(t *testing.T) {
		loader := &fakeLoader{model: &fakeModel{}, release: make(chan struct{})}
		factory := NewFactory(Registry{MobileNet: loader}, zap.NewNop())

		pending, err := factory.New("MobileNet")
		require.NoError(t, err)
		assert.False(t, pending.Settled())

		close(loader.release)
		s, err := pending.Await(testContext(t))
		require.NoError(t, err)
		assert.Equal(t, Config{Name: MobileNet, Version: 1, Alpha: 1.0, TopK: 3}, s.Config())
	})

	t.Run("with callback returns the live session", func(t *testing.T) {
		loader := &fakeLoader{model: &fakeModel{}, release: make(chan struct{})}
		factory := NewFactory(Registry{MobileNet: loader}, nil)
		loaded := make(chan error, 1)

		pending, err := factory.New("mobilenet", Options{TopK: 5}, Callback(func(_ []Prediction, err error) {
			loaded <- err
		}))
		require.NoError(t, err)
		require.True(t, pending.Settled())

		s, err := pending.Await(testContext(t))
		require.NoError(t, err)
		assert.Equal(t, 5, s.Config().TopK)
		assert.False(t, s.Ready().Settled())

		close(loader.release)
		select {
		case err := <-loaded:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("construction callback was not called")
		}
	})

	t.Run("binds the video source", func(t *testing.T) {
		src := &fakeSource{frame: solidImage(color.Black)}
		factory := NewFactory(Registry{MobileNet: &fakeLoader{model: &fakeModel{}}}, nil)

		pending, err := factory.New("mobilenet", wrapper{elt: src}, map[string]any{"topk": 2})
		require.NoError(t, err)
		s, err := pending.Await(testContext(t))
		require.NoError(t, err)

		f := s.Predict(testContext(t))
		startSource(t, src)
		preds, err := f.Await(testContext(t))
		require.NoError(t, err)
		assert.Len(t, preds, 2)
		assert.Same(t, src, s.Video())
	})

	t.Run("unknown model fails before loading", func(t *testing.T) {
		loader := &fakeLoader{model: &fakeModel{}}
		factory := NewFactory(Registry{MobileNet: loader}, nil)

		_, err := factory.New("squeezenet")

		assert.ErrorIs(t, err, ErrConfiguration)
		assert.Equal(t, 0, loader.loads)
	})

	t.Run("missing loader is a configuration error", func(t *testing.T) {
		factory := NewFactory(Registry{}, nil)

		_, err := factory.New("mobilenet")

		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("invalid options are a configuration error", func(t *testing.T) {
		factory := NewFactory(Registry{MobileNet: &fakeLoader{model: &fakeModel{}}}, nil)

		_, err := factory.New("mobilenet", Options{Alpha: 2})

		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("load failure rejects the readiness signal", func(t *testing.T) {
		boom := errors.New("no such file")
		factory := NewFactory(Registry{MobileNet: &fakeLoader{err: boom}}, nil)

		pending, err := factory.New("mobilenet")
		require.NoError(t, err)

		_, err = pending.Await(testContext(t))
		assert.ErrorIs(t, err, ErrModelLoad)
		assert.ErrorIs(t, err, boom)
	})
}
