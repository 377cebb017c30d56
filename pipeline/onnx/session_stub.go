//go:build !onnxruntime

package onnx

import (
	"fmt"
	"os"
)

func createSession(modelPath string) (session, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("native ONNX backend requires build tag 'onnxruntime'")
}
