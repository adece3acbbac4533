package core

import (
	"fmt"
	"log/slog"
	"slices"
)

// ModelType represents the kind of artifact backing a Model
type ModelType string

const (
	OnnxCnn      ModelType = "onnx_cnn"
	RandomForest ModelType = "random_forest"
)

// Model is a loaded, read-only prediction artifact. Predict must be safe for
// concurrent use.
type Model interface {
	// Predict maps a flat input laid out as InputShape to a flat output.
	Predict(input []float32) ([]float32, error)

	InputShape() []int64

	Release()
}

type ModelLoader func(path string) (Model, error)

func NewModelLoaders() map[ModelType]ModelLoader {
	return map[ModelType]ModelLoader{
		OnnxCnn: func(path string) (Model, error) {
			return LoadOnnxImageModel(path)
		},
		RandomForest: func(path string) (Model, error) {
			return LoadForestModel(path)
		},
	}
}

// Models holds the two artifacts the API serves. It is built once at startup
// and shared by every request.
type Models struct {
	Image   Model
	Tabular Model
}

// LoadModels loads the image classifier and the tabular classifier. The
// tabular model must take exactly one FeatureVector row. If either fails
// nothing is returned and anything already loaded is released.
func LoadModels(loaders map[ModelType]ModelLoader, imagePath, tabularPath string) (*Models, error) {
	imageLoader, ok := loaders[OnnxCnn]
	if !ok {
		return nil, fmt.Errorf("no loader registered for model type %s", OnnxCnn)
	}
	tabularLoader, ok := loaders[RandomForest]
	if !ok {
		return nil, fmt.Errorf("no loader registered for model type %s", RandomForest)
	}

	slog.Info("loading CNN model", "path", imagePath)
	image, err := imageLoader(imagePath)
	if err != nil {
		return nil, fmt.Errorf("error loading CNN model from %s: %w", imagePath, err)
	}
	slog.Info("CNN model loaded", "input_shape", image.InputShape())

	slog.Info("loading random forest model", "path", tabularPath)
	tabular, err := tabularLoader(tabularPath)
	if err != nil {
		image.Release()
		return nil, fmt.Errorf("error loading random forest model from %s: %w", tabularPath, err)
	}
	if shape := tabular.InputShape(); !slices.Equal(shape, []int64{1, NumFeatures}) {
		tabular.Release()
		image.Release()
		return nil, fmt.Errorf("random forest model at %s expects input shape %v, want [1 %d]", tabularPath, shape, NumFeatures)
	}
	slog.Info("random forest model loaded", "input_shape", tabular.InputShape())

	return &Models{Image: image, Tabular: tabular}, nil
}

func (m *Models) Release() {
	if m.Image != nil {
		m.Image.Release()
	}
	if m.Tabular != nil {
		m.Tabular.Release()
	}
}
