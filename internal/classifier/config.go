package classifier

import (
	"fmt"
	"strings"
)

// ModelName identifies a supported pretrained model.
type ModelName string

const (
	MobileNet ModelName = "mobilenet"
)

// defaults holds the per-model configuration used when an option is absent.
var defaults = map[ModelName]Config{
	MobileNet: {
		Name:    MobileNet,
		Version: 1,
		Alpha:   1.0,
		TopK:    3,
	},
}

// ParseModelName matches name case-insensitively against the supported models.
func ParseModelName(name string) (ModelName, error) {
	n := ModelName(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := defaults[n]; !ok {
		if name == "" {
			return "", fmt.Errorf("%w: please specify a model to use, e.g. %q", ErrConfiguration, "MobileNet")
		}
		return "", fmt.Errorf("%w: unsupported model %q", ErrConfiguration, name)
	}
	return n, nil
}

// SupportedModels lists every model with a default configuration.
func SupportedModels() []ModelName {
	return []ModelName{MobileNet}
}

// Config is the resolved, immutable configuration of a session.
type Config struct {
	Name    ModelName
	Version float64
	Alpha   float64
	TopK    int
}

// Defaults returns the default configuration for the model.
func Defaults(name ModelName) (Config, error) {
	cfg, ok := defaults[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: unsupported model %q", ErrConfiguration, name)
	}
	return cfg, nil
}

// Options overrides the per-model defaults. Zero fields are unset.
type Options struct {
	Version float64 `yaml:"version"`
	Alpha   float64 `yaml:"alpha"`
	TopK    int     `yaml:"topk"`
}

// Merge returns o with every non-zero field of other applied on top.
func (o Options) Merge(other Options) Options {
	if other.Version != 0 {
		o.Version = other.Version
	}
	if other.Alpha != 0 {
		o.Alpha = other.Alpha
	}
	if other.TopK != 0 {
		o.TopK = other.TopK
	}
	return o
}

// Resolve fills unset fields from the model defaults and validates the result.
func (o Options) Resolve(name ModelName) (Config, error) {
	cfg, err := Defaults(name)
	if err != nil {
		return Config{}, err
	}
	if o.Version != 0 {
		cfg.Version = o.Version
	}
	if o.Alpha != 0 {
		cfg.Alpha = o.Alpha
	}
	if o.TopK != 0 {
		cfg.TopK = o.TopK
	}

	if cfg.Version <= 0 {
		return Config{}, fmt.Errorf("%w: version must be positive, got %v", ErrConfiguration, cfg.Version)
	}
	if cfg.Alpha <= 0 || cfg.Alpha > 1 {
		return Config{}, fmt.Errorf("%w: alpha must be in (0, 1], got %v", ErrConfiguration, cfg.Alpha)
	}
	if cfg.TopK <= 0 {
		return Config{}, fmt.Errorf("%w: topk must be positive, got %d", ErrConfiguration, cfg.TopK)
	}
	return cfg, nil
}

// optionsFromMap reads the recognized keys of a loosely typed mapping.
// Unknown keys are ignored.
func optionsFromMap(m map[string]any) (Options, error) {
	var o Options
	for key, raw := range m {
		switch strings.ToLower(key) {
		case "version":
			v, ok := toFloat(raw)
			if !ok {
				return Options{}, fmt.Errorf("%w: version must be a number, got %T", ErrConfiguration, raw)
			}
			o.Version = v
		case "alpha":
			v, ok := toFloat(raw)
			if !ok {
				return Options{}, fmt.Errorf("%w: alpha must be a number, got %T", ErrConfiguration, raw)
			}
			o.Alpha = v
		case "topk":
			v, ok := toInt(raw)
			if !ok {
				return Options{}, fmt.Errorf("%w: topk must be an integer, got %v", ErrConfiguration, raw)
			}
			o.TopK = v
		}
	}
	return o, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	}
	return 0, false
}

// toInt accepts integer kinds and floats without a fractional part.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		if float32(int(n)) == n {
			return int(n), true
		}
	case float64:
		if float64(int(n)) == n {
			return int(n), true
		}
	}
	return 0, false
}
