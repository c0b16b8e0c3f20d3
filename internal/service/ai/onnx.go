package ai

import (
	"fmt"
	"sync"

	"plateocr/internal/config"
	"plateocr/internal/dto"
	"plateocr/internal/logger"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// initONNXRuntime loads the shared library once per process.
func initONNXRuntime(libPath string) error {
	ortInitOnce.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// ONNXDetector runs the character model through onnxruntime.
type ONNXDetector struct {
	session   *ort.DynamicAdvancedSession
	sessionMu sync.Mutex
	labels    Labels
	inputSize int
	iou       float64
	maxDet    int
	logger    *logger.Logger
}

func newONNXDetector(cfg *config.Config, labels Labels, logger *logger.Logger) (*ONNXDetector, error) {
	if err := initONNXRuntime(cfg.OnnxRuntimeLib); err != nil {
		return nil, fmt.Errorf("failed to initialize onnxruntime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect model: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("model %s has no inputs or outputs", cfg.ModelPath)
	}

	inputSize := cfg.InputSize
	if dims := inputs[0].Dimensions; len(dims) == 4 && dims[2] > 0 {
		inputSize = int(dims[2])
	}

	if labels == nil {
		labels = metadataLabels(cfg.ModelPath, logger)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	logger.Info("ONNX session ready: %s (input %dx%d, %d classes)", cfg.ModelPath, inputSize, inputSize, len(labels))

	return &ONNXDetector{
		session:   session,
		labels:    labels,
		inputSize: inputSize,
		iou:       cfg.IoUThreshold,
		maxDet:    cfg.MaxDetections,
		logger:    logger,
	}, nil
}

// metadataLabels reads class names embedded by the exporter, falling back to DefaultAlphabet.
func metadataLabels(modelPath string, logger *logger.Logger) Labels {
	meta, err := ort.GetModelMetadata(modelPath)
	if err != nil {
		logger.Warning("Could not read model metadata: %v", err)
		return DefaultAlphabet
	}
	defer meta.Destroy()

	names, ok, err := meta.LookupCustomMetadataMap("names")
	if err != nil || !ok {
		logger.Warning("Model carries no class names, using built-in alphabet")
		return DefaultAlphabet
	}

	labels, err := ParseMetadataNames(names)
	if err != nil {
		logger.Warning("Ignoring model class names: %v", err)
		return DefaultAlphabet
	}
	return labels
}

// DetectObjects runs the session on the image and returns detections at or above confidence.
func (d *ONNXDetector) DetectObjects(imageBytes []byte, confidence float64) ([]dto.DetectionResult, error) {
	blob, lb, err := preprocess(imageBytes, d.inputSize)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	pixels, err := blob.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read input blob: %w", err)
	}
	inputData := make([]float32, len(pixels))
	copy(inputData, pixels)

	size := int64(d.inputSize)
	input, err := ort.NewTensor(ort.NewShape(1, 3, size, size), inputData)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	d.sessionMu.Lock()
	err = d.session.Run([]ort.Value{input}, outputs)
	d.sessionMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer outputs[0].Destroy()

	output, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}

	shape := output.GetShape()
	dims := make([]int, len(shape))
	for i, v := range shape {
		dims[i] = int(v)
	}

	results, err := decodeYOLO(output.GetData(), dims, lb, d.labels, decodeOptions{
		confidence:    confidence,
		iou:           d.iou,
		maxDetections: d.maxDet,
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("Detected %d character(s) on %dx%d image", len(results), lb.srcW, lb.srcH)
	return results, nil
}

// Close destroys the session.
func (d *ONNXDetector) Close() error {
	return d.session.Destroy()
}
