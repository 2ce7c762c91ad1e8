package model

import (
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var envMu sync.Mutex

// SessionOptions configures the ONNX Runtime session backing a Session.
type SessionOptions struct {
	LibraryPath    string
	IntraOpThreads int
}

// Session is an ONNX Runtime classifier. Forward allocates its own tensors
// per call, so one Session serves concurrent requests.
type Session struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
}

func initEnvironment(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	return ort.InitializeEnvironment()
}

// ShutdownEnvironment releases the ONNX Runtime environment. Call once on exit
// after every Session is closed.
func ShutdownEnvironment() error {
	envMu.Lock()
	defer envMu.Unlock()

	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// Open loads an exported classifier from path and checks that its input
// takes [N, 3, 224, 224] images and its output has one score per label.
func Open(path string, opts SessionOptions) (*Session, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	if err := initEnvironment(opts.LibraryPath); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize ONNX environment: %v", ErrLoad, err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read model %s: %v", ErrLoad, path, err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("%w: %w: expected 1 input and 1 output, got %d and %d",
			ErrLoad, ErrShapeMismatch, len(inputs), len(outputs))
	}
	if err := checkInput(inputs[0].Dimensions); err != nil {
		return nil, fmt.Errorf("%w: input %q: %w", ErrLoad, inputs[0].Name, err)
	}
	if err := checkOutput(outputs[0].Dimensions); err != nil {
		return nil, fmt.Errorf("%w: output %q: %w", ErrLoad, outputs[0].Name, err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create session options: %v", ErrLoad, err)
	}
	defer options.Destroy()

	if opts.IntraOpThreads > 0 {
		if err := options.SetIntraOpNumThreads(opts.IntraOpThreads); err != nil {
			return nil, fmt.Errorf("%w: failed to set intra-op threads: %v", ErrLoad, err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(path,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, options)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create ONNX session: %v", ErrLoad, err)
	}

	return &Session{
		session:    session,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
	}, nil
}

// dynamic dimensions are reported as -1
func checkInput(dims ort.Shape) error {
	want := []int64{-1, 3, InputSize, InputSize}
	if len(dims) != len(want) {
		return fmt.Errorf("%w: rank %d, want %d", ErrShapeMismatch, len(dims), len(want))
	}
	for i := 1; i < len(want); i++ {
		if dims[i] != want[i] && dims[i] != -1 {
			return fmt.Errorf("%w: got %v, want [N 3 %d %d]", ErrShapeMismatch, dims, InputSize, InputSize)
		}
	}
	return nil
}

func checkOutput(dims ort.Shape) error {
	if len(dims) != 2 || dims[1] != int64(NumClasses) {
		return fmt.Errorf("%w: got %v, want [N %d]", ErrShapeMismatch, dims, NumClasses)
	}
	return nil
}

func (s *Session) Forward(t *Tensor) ([]float32, error) {
	input, err := ort.NewTensor(ort.NewShape(t.Shape...), t.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(t.Shape[0], int64(NumClasses)))
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer output.Destroy()

	if err := s.session.Run([]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output}); err != nil {
		return nil, fmt.Errorf("run %s -> %s: %w", s.inputName, s.outputName, err)
	}

	scores := make([]float32, NumClasses)
	copy(scores, output.GetData())
	return scores, nil
}

func (s *Session) Close() error {
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	return err
}
