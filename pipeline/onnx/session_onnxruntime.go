//go:build onnxruntime

package onnx

import (
	"fmt"
	"os"
	"strings"

	ort "github.com/yalue/onnxruntime_go"
)

type ortSession struct {
	sess       *ort.DynamicAdvancedSession
	inputNames []string
	numOutputs int
}

func createSession(modelPath string) (session, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, err
	}

	if !ort.IsInitialized() {
		if lib := os.Getenv("SKWEAK_ONNXRUNTIME_LIB"); lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("inspect model: %w", err)
	}
	inputNames := make([]string, len(inputs))
	for i, info := range inputs {
		inputNames[i] = info.Name
	}
	outputNames := make([]string, len(outputs))
	for i, info := range outputs {
		outputNames[i] = info.Name
	}

	sess, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, outputNames, nil)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return &ortSession{sess: sess, inputNames: inputNames, numOutputs: len(outputNames)}, nil
}

func (s *ortSession) run(inputIDs, attentionMask, tokenTypeIDs []int64) ([][]float32, error) {
	seqLen := int64(len(inputIDs))
	shape := ort.NewShape(1, seqLen)

	inputs := make([]ort.Value, 0, len(s.inputNames))
	defer func() {
		for _, v := range inputs {
			v.Destroy()
		}
	}()

	// Feed tensors by input name; exports without token_type_ids get zeros
	// for any unrecognized input.
	for _, name := range s.inputNames {
		var data []int64
		switch {
		case strings.Contains(name, "input_ids"):
			data = inputIDs
		case strings.Contains(name, "attention_mask"):
			data = attentionMask
		case strings.Contains(name, "token_type_ids"):
			data = tokenTypeIDs
		default:
			data = make([]int64, seqLen)
		}
		tensor, err := ort.NewTensor(shape, data)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, tensor)
	}

	outputs := make([]ort.Value, s.numOutputs)
	if err := s.sess.Run(inputs, outputs); err != nil {
		return nil, err
	}
	defer func() {
		for _, v := range outputs {
			if v != nil {
				v.Destroy()
			}
		}
	}()

	logits, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}

	dims := logits.GetShape()
	if len(dims) != 3 || dims[0] != 1 {
		return nil, fmt.Errorf("unexpected logits shape %v", dims)
	}
	rows, cols := int(dims[1]), int(dims[2])
	flat := logits.GetData()
	if len(flat) < rows*cols {
		return nil, fmt.Errorf("logits data shorter than shape %v", dims)
	}

	out := make([][]float32, rows)
	for i := range out {
		out[i] = flat[i*cols : (i+1)*cols]
	}
	return out, nil
}
