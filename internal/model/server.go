package model

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// Server owns the ONNX runtime session for the process lifetime. The session is
// read-only after NewServer returns; every Infer call allocates its own tensors.
type Server struct {
	session     *ort.DynamicAdvancedSession
	Metadata    Metadata
	ModelPath   string
	inputShape  ort.Shape
	outputShape ort.Shape
}

// NewServer initializes the runtime and loads the model at modelPath. libraryPath
// may be empty to use the runtime's default shared library lookup.
func NewServer(modelPath, metadataPath, libraryPath string) (*Server, error) {
	metadata, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{metadata.InputName}, []string{metadata.OutputName}, nil)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &Server{
		session:     session,
		Metadata:    metadata,
		ModelPath:   modelPath,
		inputShape:  ort.NewShape(metadata.InputShape...),
		outputShape: ort.NewShape(metadata.OutputShape...),
	}, nil
}

func (s *Server) Infer(vec FeatureVector) (Distribution, error) {
	input := make([]float32, FeatureCount)
	copy(input, vec[:])

	inputTensor, err := ort.NewTensor(s.inputShape, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](s.outputShape)
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := s.session.Run([]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor}); err != nil {
		return nil, fmt.Errorf("session run: %w", err)
	}

	out := outputTensor.GetData()
	dist := make(Distribution, len(out))
	copy(dist, out)
	return dist, nil
}

func (s *Server) Close() {
	if s.session != nil {
		s.session.Destroy()
	}
	ort.DestroyEnvironment()
}
