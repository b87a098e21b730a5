package classifier

import (
	"fmt"
	"image"
)

// ConstructionCall is the typed form of the arguments given to the factory.
type ConstructionCall struct {
	Name     ModelName
	Video    Source
	Options  Options
	Callback Callback
}

// PredictionRequest is the typed form of the arguments given to Predict.
// Exactly one of Image and Video is set on a successfully resolved request.
type PredictionRequest struct {
	Image    image.Image
	Video    Source
	TopK     int
	Callback Callback
}

// ResolveConstruction classifies the positional arguments that follow the
// model identifier. The first argument may be a video source, a wrapped video
// source, options or a callback. The second may be options or a callback, and
// the third a callback. A callback in a later position overrides an earlier
// one, and options in the second position are merged over the first.
func ResolveConstruction(name string, args ...any) (ConstructionCall, error) {
	model, err := ParseModelName(name)
	if err != nil {
		return ConstructionCall{}, err
	}
	if len(args) > 3 {
		return ConstructionCall{}, fmt.Errorf("%w: expected at most 4 arguments, got %d", ErrConfiguration, len(args)+1)
	}

	call := ConstructionCall{Name: model}
	for i, arg := range args {
		if arg == nil {
			continue
		}
		if i == 0 {
			if src, ok := asSource(arg); ok {
				call.Video = src
				continue
			}
		}
		if i < 2 {
			opts, ok, err := asOptions(arg)
			if err != nil {
				return ConstructionCall{}, err
			}
			if ok {
				call.Options = call.Options.Merge(opts)
				continue
			}
		}
		if cb, ok := asCallback(arg); ok {
			if cb != nil {
				call.Callback = cb
			}
			continue
		}
		return ConstructionCall{}, fmt.Errorf("%w: unsupported argument %T in position %d", ErrConfiguration, arg, i+2)
	}
	return call, nil
}

// ResolvePredict classifies the arguments of a predict call. The first may be
// a callback, a class count or an image. The second may be a class count or a
// callback, and the third a callback. When no image is given the bound video
// is used; with neither, ErrInvalidInput is returned.
//
// The returned request carries the resolved callback even when an error is
// returned, so that the error can be delivered to it.
func ResolvePredict(video Source, topK int, args ...any) (PredictionRequest, error) {
	req := PredictionRequest{TopK: topK}

	// Callbacks are picked up first so that a malformed call can still report
	// to the handler the caller supplied.
	for i, arg := range args {
		if i > 2 {
			break
		}
		if cb, ok := asCallback(arg); ok && cb != nil {
			req.Callback = cb
		}
	}
	if len(args) > 3 {
		return req, fmt.Errorf("%w: expected at most 3 arguments, got %d", ErrInvalidInput, len(args))
	}

	for i, arg := range args {
		if arg == nil {
			continue
		}
		if _, ok := asCallback(arg); ok {
			continue
		}
		if i < 2 {
			k, ok, err := asCount(arg)
			if err != nil {
				return req, err
			}
			if ok {
				req.TopK = k
				continue
			}
		}
		if i == 0 {
			if img, ok := asImage(arg); ok {
				req.Image = img
				continue
			}
		}
		return req, fmt.Errorf("%w: unsupported argument %T in position %d", ErrInvalidInput, arg, i+1)
	}

	if req.Image == nil {
		if video == nil {
			return req, fmt.Errorf("%w: no image to classify and no video bound to the classifier", ErrInvalidInput)
		}
		req.Video = video
	}
	return req, nil
}

func asSource(v any) (Source, bool) {
	if src, ok := v.(Source); ok {
		return src, true
	}
	if w, ok := v.(ElementWrapper); ok {
		if src, ok := w.Element().(Source); ok {
			return src, true
		}
	}
	return nil, false
}

func asImage(v any) (image.Image, bool) {
	if img, ok := v.(image.Image); ok {
		return img, true
	}
	if w, ok := v.(ElementWrapper); ok {
		if img, ok := w.Element().(image.Image); ok {
			return img, true
		}
	}
	return nil, false
}

func asOptions(v any) (Options, bool, error) {
	switch o := v.(type) {
	case Options:
		return o, true, nil
	case *Options:
		if o == nil {
			return Options{}, true, nil
		}
		return *o, true, nil
	case map[string]any:
		opts, err := optionsFromMap(o)
		return opts, err == nil, err
	}
	return Options{}, false, nil
}

func asCallback(v any) (Callback, bool) {
	switch fn := v.(type) {
	case Callback:
		return fn, true
	case func([]Prediction, error):
		return fn, true
	}
	return nil, false
}

// asCount reports whether v is a number and, if so, returns it as a class
// count. Non-integral or non-positive numbers are rejected.
func asCount(v any) (int, bool, error) {
	if _, isNumber := toFloat(v); !isNumber {
		if _, isInt := toInt(v); !isInt {
			return 0, false, nil
		}
	}
	k, ok := toInt(v)
	if !ok || k <= 0 {
		return 0, true, fmt.Errorf("%w: class count must be a positive integer, got %v", ErrInvalidInput, v)
	}
	return k, true, nil
}
