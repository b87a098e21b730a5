package classifier

import (
	"fmt"

	"go.uber.org/zap"
)

// Registry maps each supported model to the capability that loads it.
type Registry map[ModelName]Loader

// Factory builds sessions from loosely shaped arguments.
type Factory struct {
	loaders Registry
	logger  *zap.Logger
}

// NewFactory creates a Factory. A nil logger disables logging.
func NewFactory(loaders Registry, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{loaders: loaders, logger: logger}
}

// New resolves the arguments and starts a session. The optional arguments are
// (video, options, callback) in any of the shapes ResolveConstruction accepts.
//
// When a callback was supplied the returned future is already resolved to the
// live session, and load completion is reported to the callback. Otherwise it
// is the session's readiness signal. Either way, awaiting it yields the
// eventual session.
func (f *Factory) New(name string, args ...any) (*Future[*Session], error) {
	call, err := ResolveConstruction(name, args...)
	if err != nil {
		return nil, err
	}
	cfg, err := call.Options.Resolve(call.Name)
	if err != nil {
		return nil, err
	}
	loader, ok := f.loaders[call.Name]
	if !ok || loader == nil {
		return nil, fmt.Errorf("%w: no loader registered for %q", ErrConfiguration, call.Name)
	}

	s := NewSession(cfg, loader, call.Video, call.Callback, WithLogger(f.logger))
	if call.Callback != nil {
		return Resolved(s, nil), nil
	}
	return s.Ready(), nil
}
