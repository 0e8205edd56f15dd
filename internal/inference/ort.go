package inference

import (
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// The onnxruntime environment is process-wide; initialize it once and leave
// it up for the lifetime of the process.
var (
	ortInitOnce sync.Once
	ortInitErr  error
)

type ortRunner struct {
	session *ort.DynamicAdvancedSession
}

func newOrtRunner(modelPath, libraryPath, inputName, outputName string) (runner, error) {
	ortInitOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("failed to initialize onnxruntime: %w", ortInitErr)
	}

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", modelPath)
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputName},
		[]string{outputName},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session for %s: %w", modelPath, err)
	}

	return &ortRunner{session: session}, nil
}

func (r *ortRunner) run(data []float32, shape []int64) ([]float32, []int64, error) {
	input, err := ort.NewTensor(ort.NewShape(shape...), data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	// A nil output slot makes onnxruntime allocate the output for us, which
	// is what keeps the declared dims authoritative for the decoder.
	outputs := []ort.Value{nil}
	if err := r.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, nil, fmt.Errorf("inference failed: %w", err)
	}

	outTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		outputs[0].Destroy()
		return nil, nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}
	defer outTensor.Destroy()

	// Copy out of the session-owned buffers; the raw output crosses the
	// domain boundary by ownership.
	outData := make([]float32, len(outTensor.GetData()))
	copy(outData, outTensor.GetData())
	outDims := make([]int64, len(outTensor.GetShape()))
	copy(outDims, outTensor.GetShape())

	return outData, outDims, nil
}

func (r *ortRunner) destroy() {
	r.session.Destroy()
}
