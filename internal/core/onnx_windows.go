//go:build windows

package core

import (
	"errors"
)

var ErrOnnxNotSupportedOnWindows = errors.New("ONNX models are not supported on Windows")

func InitOnnxRuntime(libPath string) error {
	return ErrOnnxNotSupportedOnWindows
}

func DestroyOnnxRuntime() error {
	return nil
}

type OnnxImageModel struct{}

func LoadOnnxImageModel(modelPath string) (Model, error) {
	return nil, ErrOnnxNotSupportedOnWindows
}

func (m *OnnxImageModel) InputShape() []int64 {
	return []int64{1, ImageSize, ImageSize, ImageChannels}
}

func (m *OnnxImageModel) Predict(input []float32) ([]float32, error) {
	return nil, ErrOnnxNotSupportedOnWindows
}

func (m *OnnxImageModel) Release() {
	// no-op
}
