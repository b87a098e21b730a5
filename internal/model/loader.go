package model

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"

	"github.com/Brownie44l1/image-classifier/internal/classifier"
)

// Loader opens exported models from a directory. For a model named
// "mobilenet", version 2 and alpha 0.5 it reads mobilenet_v2_0.5.onnx and
// mobilenet_v2_0.5.json.
type Loader struct {
	name              string
	dir               string
	sharedLibraryPath string
	logger            *zap.Logger

	mu          sync.Mutex
	initialized bool
	models      []*Model
}

// NewLoader creates a Loader for the named model family. sharedLibraryPath
// may be empty to use the runtime's default library lookup.
func NewLoader(name classifier.ModelName, dir, sharedLibraryPath string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		name:              string(name),
		dir:               dir,
		sharedLibraryPath: sharedLibraryPath,
		logger:            logger,
	}
}

// FileBase returns the file name, without extension, of a model variant.
func FileBase(name string, version, alpha float64) string {
	return fmt.Sprintf("%s_v%s_%s", name,
		strconv.FormatFloat(version, 'f', -1, 64),
		strconv.FormatFloat(alpha, 'f', -1, 64))
}

// Paths returns the model and metadata paths of a variant.
func (l *Loader) Paths(version, alpha float64) (modelPath, metadataPath string) {
	base := filepath.Join(l.dir, FileBase(l.name, version, alpha))
	return base + ".onnx", base + ".json"
}

// Load implements classifier.Loader.
func (l *Loader) Load(ctx context.Context, version, alpha float64) (classifier.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	modelPath, metadataPath := l.Paths(version, alpha)
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}
	metadata, err := readMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.initEnvironment(); err != nil {
		return nil, err
	}

	l.logger.Info("Loading model",
		zap.String("path", modelPath),
		zap.Int("classes", len(metadata.Classes)),
		zap.Int("image_size", metadata.ImageSize),
	)
	m, err := newModel(modelPath, metadata)
	if err != nil {
		return nil, err
	}
	l.models = append(l.models, m)
	return m, nil
}

func (l *Loader) initEnvironment() error {
	if l.initialized {
		return nil
	}
	if l.sharedLibraryPath != "" {
		ort.SetSharedLibraryPath(l.sharedLibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}
	l.initialized = true
	return nil
}

// Close releases every model loaded through l and the runtime environment.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, m := range l.models {
		m.Close()
	}
	l.models = nil
	if l.initialized {
		ort.DestroyEnvironment()
		l.initialized = false
	}
}
