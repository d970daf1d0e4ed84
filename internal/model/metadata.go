package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultMetadata describes a model taking a [1, 4] float32 input named "input"
// and producing a [1, 4] float32 output named "output".
func DefaultMetadata() Metadata {
	return Metadata{
		InputName:   "input",
		OutputName:  "output",
		InputShape:  []int64{1, FeatureCount},
		OutputShape: []int64{1, FeatureCount},
		Classes:     Classes(),
	}
}

// LoadMetadata reads a metadata file. Fields left out of the file keep their
// DefaultMetadata values. An empty path returns the defaults.
func LoadMetadata(path string) (Metadata, error) {
	metadata := DefaultMetadata()
	if path == "" {
		return metadata, nil
	}

	metaFile, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}
	if err := json.Unmarshal(metaFile, &metadata); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if err := metadata.Validate(); err != nil {
		return Metadata{}, err
	}
	return metadata, nil
}

// Validate checks that the model's declared shapes and classes line up with the
// fixed feature vector and label set.
func (m Metadata) Validate() error {
	if m.InputName == "" || m.OutputName == "" {
		return fmt.Errorf("metadata: input and output names are required")
	}
	if n := elements(m.InputShape); n != FeatureCount {
		return fmt.Errorf("metadata: input shape %v holds %d values, want %d", m.InputShape, n, FeatureCount)
	}
	if n := elements(m.OutputShape); n != int64(len(classes)) {
		return fmt.Errorf("metadata: output shape %v holds %d values, want %d", m.OutputShape, n, len(classes))
	}
	if len(m.Classes) != len(classes) {
		return fmt.Errorf("metadata: %d classes listed, want %d", len(m.Classes), len(classes))
	}
	for i, name := range m.Classes {
		if name != classes[i] {
			return fmt.Errorf("metadata: class %d is %q, want %q", i, name, classes[i])
		}
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
