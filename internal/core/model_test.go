package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModel struct {
	shape    []int64
	released bool
}

func (m *stubModel) Predict(input []float32) ([]float32, error) { return []float32{1}, nil }

func (m *stubModel) InputShape() []int64 { return m.shape }

func (m *stubModel) Release() { m.released = true }

func TestLoadModels(t *testing.T) {
	image := &stubModel{shape: []int64{1, 224, 224, 3}}
	tabular := &stubModel{shape: []int64{1, 4}}

	var loadedPaths []string
	loaders := map[ModelType]ModelLoader{
		OnnxCnn: func(path string) (Model, error) {
			loadedPaths = append(loadedPaths, path)
			return image, nil
		},
		RandomForest: func(path string) (Model, error) {
			loadedPaths = append(loadedPaths, path)
			return tabular, nil
		},
	}

	models, err := LoadModels(loaders, "models/cnn.onnx", "models/forest.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"models/cnn.onnx", "models/forest.json"}, loadedPaths)
	assert.Same(t, image, models.Image)
	assert.Same(t, tabular, models.Tabular)

	models.Release()
	assert.True(t, image.released)
	assert.True(t, tabular.released)
}

func TestLoadModelsReleasesOnFailure(t *testing.T) {
	image := &stubModel{}
	loaders := map[ModelType]ModelLoader{
		OnnxCnn: func(string) (Model, error) { return image, nil },
		RandomForest: func(string) (Model, error) {
			return nil, errors.New("unsupported pickle protocol")
		},
	}

	models, err := LoadModels(loaders, "a", "b")
	require.Error(t, err)
	assert.Nil(t, models)
	assert.Contains(t, err.Error(), "unsupported pickle protocol")
	assert.True(t, image.released)
}

func TestLoadModelsRejectsTabularWidth(t *testing.T) {
	image := &stubModel{shape: []int64{1, 224, 224, 3}}
	tabular := &stubModel{shape: []int64{1, 2}}
	loaders := map[ModelType]ModelLoader{
		OnnxCnn:      func(string) (Model, error) { return image, nil },
		RandomForest: func(string) (Model, error) { return tabular, nil },
	}

	models, err := LoadModels(loaders, "a", "b")
	require.Error(t, err)
	assert.Nil(t, models)
	assert.Contains(t, err.Error(), "[1 2]")
	assert.True(t, image.released)
	assert.True(t, tabular.released)
}

func TestLoadModelsRejectsNarrowForest(t *testing.T) {
	path := writeForest(t, forestArtifact{
		NFeatures: 2,
		Classes:   []float64{0, 1},
		Trees:     []forestTree{phTree()},
	})
	image := &stubModel{shape: []int64{1, 224, 224, 3}}
	loaders := NewModelLoaders()
	loaders[OnnxCnn] = func(string) (Model, error) { return image, nil }

	_, err := LoadModels(loaders, "cnn.onnx", path)
	require.Error(t, err)
	assert.True(t, image.released)
}

func TestLoadModelsImageFailure(t *testing.T) {
	tabularCalled := false
	loaders := map[ModelType]ModelLoader{
		OnnxCnn: func(string) (Model, error) { return nil, errors.New("no such file") },
		RandomForest: func(string) (Model, error) {
			tabularCalled = true
			return &stubModel{}, nil
		},
	}

	_, err := LoadModels(loaders, "a", "b")
	assert.Error(t, err)
	assert.False(t, tabularCalled)
}

func TestLoadModelsMissingLoader(t *testing.T) {
	_, err := LoadModels(map[ModelType]ModelLoader{}, "a", "b")
	assert.Error(t, err)
}

func TestNewModelLoadersForest(t *testing.T) {
	path := writeForest(t, forestArtifact{
		NFeatures: 4,
		Classes:   []float64{0, 1},
		Trees:     []forestTree{phTree()},
	})

	model, err := NewModelLoaders()[RandomForest](path)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, model.InputShape())
}
