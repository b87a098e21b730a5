package classifier

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Session owns a loaded model and classifies images with it. It is safe for
// concurrent use.
type Session struct {
	cfg    Config
	video  Source
	logger *zap.Logger

	ready *Future[*Session]
	model Model // set before ready settles successfully

	// The first predict call subscribes to the video source; sourceReady is
	// closed when the source starts and stays closed.
	subscribe   sync.Once
	sourceReady chan struct{}

	yield func()
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the logger used by the session.
func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession starts loading the model in the background and returns
// immediately. If cb is non-nil it is called once with the load error, or nil,
// when loading settles.
func NewSession(cfg Config, loader Loader, video Source, cb Callback, opts ...SessionOption) *Session {
	s := &Session{
		cfg:    cfg,
		video:  video,
		logger: zap.NewNop(),
		ready:  newFuture[*Session](),
		yield:  runtime.Gosched,

		sourceReady: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("model", string(cfg.Name)))

	if cb != nil {
		s.ready.Observe(func(_ *Session, err error) {
			cb(nil, err)
		})
	}

	go s.load(loader)
	return s
}

func (s *Session) load(loader Loader) {
	start := time.Now()
	s.logger.Info("Loading model",
		zap.Float64("version", s.cfg.Version),
		zap.Float64("alpha", s.cfg.Alpha),
	)

	m, err := loader.Load(context.Background(), s.cfg.Version, s.cfg.Alpha)
	if err == nil && m == nil {
		err = errors.New("loader returned no model")
	}
	if err != nil {
		if !errors.Is(err, ErrModelLoad) {
			err = fmt.Errorf("%w: %w", ErrModelLoad, err)
		}
		s.logger.Error("Failed to load model", zap.Error(err))
		s.ready.settle(nil, err)
		return
	}

	s.model = m
	s.logger.Info("Model loaded", zap.Duration("elapsed", time.Since(start)))
	s.ready.settle(s, nil)
}

// Ready returns the shared readiness signal. It resolves to the session once
// the model has loaded, or fails with ErrModelLoad.
func (s *Session) Ready() *Future[*Session] {
	return s.ready
}

// Config returns the resolved configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Video returns the bound video source, if any.
func (s *Session) Video() Source {
	return s.video
}

// Predict classifies an image. Accepted argument shapes are described on
// ResolvePredict. The outcome is delivered through the returned future and,
// when a callback was given, to that callback as well.
func (s *Session) Predict(ctx context.Context, args ...any) *Future[[]Prediction] {
	f := newFuture[[]Prediction]()

	req, err := ResolvePredict(s.video, s.cfg.TopK, args...)
	if req.Callback != nil {
		f.Observe(req.Callback)
	}
	if err != nil {
		f.settle(nil, err)
		return f
	}

	go func() {
		preds, err := s.predict(ctx, req)
		f.settle(preds, err)
	}()
	return f
}

func (s *Session) predict(ctx context.Context, req PredictionRequest) ([]Prediction, error) {
	if _, err := s.ready.Await(ctx); err != nil {
		return nil, err
	}

	// Never classify in the same turn the readiness signal resolved in.
	s.yield()

	if err := s.awaitSource(ctx); err != nil {
		return nil, err
	}

	img := req.Image
	if img == nil {
		frame, err := req.Video.Frame()
		if err != nil {
			return nil, fmt.Errorf("%w: reading video frame: %w", ErrInvalidInput, err)
		}
		img = frame
	}

	preds, err := s.model.Classify(ctx, img, req.TopK)
	if err != nil {
		s.logger.Warn("Classification failed", zap.Int("topk", req.TopK), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrClassification, err)
	}
	return preds, nil
}

// awaitSource waits for the bound video source to start producing frames.
// Only the first caller subscribes; every caller waits until the source has
// started, and once it has nobody waits again.
func (s *Session) awaitSource(ctx context.Context) error {
	if s.video == nil {
		return nil
	}

	s.subscribe.Do(func() {
		var once sync.Once
		s.video.OnLoadStart(func() {
			once.Do(func() { close(s.sourceReady) })
		})
	})

	select {
	case <-s.sourceReady:
		return nil
	default:
	}

	s.logger.Debug("Waiting for video source")
	select {
	case <-s.sourceReady:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
