//go:build !windows

package core

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var ortEnv struct {
	once sync.Once
	err  error
}

// InitOnnxRuntime loads the shared library and initializes the process-wide
// ONNX Runtime environment. Only the first call has any effect. The runtime
// logs at warning severity and above.
func InitOnnxRuntime(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

func DestroyOnnxRuntime() error {
	return ort.DestroyEnvironment()
}

// OnnxImageModel runs the converted spinach leaf classifier. Predict always
// takes a packed NHWC batch of one; models exported channels-first are
// transposed before the run.
type OnnxImageModel struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	layout     Layout
	numClasses int64
}

func LoadOnnxImageModel(modelPath string) (Model, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("expected 1 model input, got %d", len(inputs))
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("model has no outputs")
	}

	layout, err := detectLayout(inputs[0].Dimensions, ImageSize)
	if err != nil {
		return nil, err
	}

	outDims := outputs[0].Dimensions
	if len(outDims) != 2 || outDims[1] != int64(len(ImageClasses)) {
		return nil, fmt.Errorf("expected output shape [batch, %d], got %v", len(ImageClasses), outDims)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer opts.Destroy()

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &OnnxImageModel{
		session:    session,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
		layout:     layout,
		numClasses: outDims[1],
	}, nil
}

func (m *OnnxImageModel) InputShape() []int64 {
	return []int64{1, ImageSize, ImageSize, ImageChannels}
}

func (m *OnnxImageModel) Predict(input []float32) ([]float32, error) {
	expected := ImageSize * ImageSize * ImageChannels
	if len(input) != expected {
		return nil, fmt.Errorf("expected %d input values, got %d", expected, len(input))
	}

	shape := ort.NewShape(1, ImageSize, ImageSize, ImageChannels)
	if m.layout == LayoutNCHW {
		input = toNCHW(input, ImageSize, ImageSize, ImageChannels)
		shape = ort.NewShape(1, ImageChannels, ImageSize, ImageSize)
	}

	inT, err := ort.NewTensor(shape, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inT.Destroy()

	outT, err := ort.NewEmptyTensor[float32](ort.NewShape(1, m.numClasses))
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outT.Destroy()

	if err := m.session.Run([]ort.Value{inT}, []ort.Value{outT}); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	src := outT.GetData()
	scores := make([]float32, len(src))
	copy(scores, src)
	return scores, nil
}

func (m *OnnxImageModel) Release() {
	m.session.Destroy()
}
