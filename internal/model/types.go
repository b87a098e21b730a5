package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Metadata describes the tensors and labels of an exported model. It is read
// from a JSON file stored next to the .onnx file.
type Metadata struct {
	InputName   string     `json:"input_name"`
	OutputName  string     `json:"output_name"`
	InputShape  []int64    `json:"input_shape"`
	OutputShape []int64    `json:"output_shape"`
	Classes     []string   `json:"classes"`
	ImageSize   int        `json:"image_size"`
	Mean        [3]float32 `json:"mean"`
	Std         [3]float32 `json:"std"`
	Softmax     bool       `json:"softmax"`
}

func readMetadata(path string) (Metadata, error) {
	metaFile, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata Metadata
	if err := json.Unmarshal(metaFile, &metadata); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if err := metadata.normalize(); err != nil {
		return Metadata{}, fmt.Errorf("invalid metadata %s: %w", path, err)
	}
	return metadata, nil
}

// normalize fills defaults and checks that the shapes agree with the image
// size and label count.
func (m *Metadata) normalize() error {
	if m.InputName == "" {
		m.InputName = "input"
	}
	if m.OutputName == "" {
		m.OutputName = "output"
	}
	if m.Std == [3]float32{} {
		m.Std = [3]float32{1, 1, 1}
	}
	if m.ImageSize <= 0 {
		return fmt.Errorf("image_size must be positive, got %d", m.ImageSize)
	}
	if len(m.Classes) == 0 {
		return errors.New("metadata lists no classes")
	}

	want := int64(3 * m.ImageSize * m.ImageSize)
	if got := elements(m.InputShape); got != want {
		return fmt.Errorf("input shape %v holds %d values, want %d", m.InputShape, got, want)
	}
	if got := elements(m.OutputShape); got < int64(len(m.Classes)) {
		return fmt.Errorf("output shape %v holds %d values for %d classes", m.OutputShape, got, len(m.Classes))
	}
	return nil
}

func elements(shape []int64) int64 {
	if len(shape) == 0 {
		return 0
	}
	n := int64(1)
	for _, dim := range shape {
		n *= dim
	}
	return n
}
