package ai

import (
	"fmt"
	"sync"

	"plateocr/internal/config"
	"plateocr/internal/dto"
	"plateocr/internal/logger"

	"gocv.io/x/gocv"
)

// OpenCVDetector runs an exported ONNX character model through the OpenCV DNN module.
type OpenCVDetector struct {
	net       gocv.Net
	netMu     sync.Mutex
	labels    Labels
	inputSize int
	iou       float64
	maxDet    int
	logger    *logger.Logger
}

func newOpenCVDetector(cfg *config.Config, labels Labels, logger *logger.Logger) (*OpenCVDetector, error) {
	detector := &OpenCVDetector{
		labels:    labels,
		inputSize: cfg.InputSize,
		iou:       cfg.IoUThreshold,
		maxDet:    cfg.MaxDetections,
		logger:    logger,
	}

	if err := detector.initializeNet(cfg.ModelPath); err != nil {
		return nil, err
	}
	return detector, nil
}

// initializeNet loads the DNN network and sets backend/target preferences.
func (d *OpenCVDetector) initializeNet(modelPath string) error {
	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return fmt.Errorf("failed to load network from %s", modelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	d.net = net
	d.logger.Info("Detection network initialized from %s", modelPath)
	return nil
}

// DetectObjects runs the network on the image and returns detections at or above confidence.
func (d *OpenCVDetector) DetectObjects(imageBytes []byte, confidence float64) ([]dto.DetectionResult, error) {
	blob, lb, err := preprocess(imageBytes, d.inputSize)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	d.netMu.Lock()
	defer d.netMu.Unlock()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read network output: %w", err)
	}

	results, err := decodeYOLO(data, output.Size(), lb, d.labels, decodeOptions{
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

// Close releases the network.
func (d *OpenCVDetector) Close() error {
	return d.net.Close()
}
