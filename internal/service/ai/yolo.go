package ai

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"plateocr/internal/dto"

	"gocv.io/x/gocv"
)

// classOffset separates boxes of different classes so NMS never suppresses across classes.
const classOffset = 7680

// letterbox describes how a source image was fitted into the square network input.
type letterbox struct {
	scale       float64
	srcW, srcH  int
	newW, newH  int
	top, bottom int
	left, right int
}

func newLetterbox(srcW, srcH, size int) letterbox {
	scale := math.Min(float64(size)/float64(srcW), float64(size)/float64(srcH))
	newW := int(math.Round(float64(srcW) * scale))
	newH := int(math.Round(float64(srcH) * scale))
	dw := float64(size-newW) / 2
	dh := float64(size-newH) / 2

	return letterbox{
		scale:  scale,
		srcW:   srcW,
		srcH:   srcH,
		newW:   newW,
		newH:   newH,
		top:    int(math.Round(dh - 0.1)),
		bottom: int(math.Round(dh + 0.1)),
		left:   int(math.Round(dw - 0.1)),
		right:  int(math.Round(dw + 0.1)),
	}
}

// toSource maps a point from network input space back to source pixels, clipped to the image.
func (lb letterbox) toSource(x, y float64) (float64, float64) {
	sx := (x - float64(lb.left)) / lb.scale
	sy := (y - float64(lb.top)) / lb.scale
	return clamp(sx, 0, float64(lb.srcW)), clamp(sy, 0, float64(lb.srcH))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// preprocess decodes the image, letterboxes it to size and returns an NCHW float blob.
// The caller owns the returned Mat.
func preprocess(imageBytes []byte, size int) (gocv.Mat, letterbox, error) {
	mat, err := gocv.IMDecode(imageBytes, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, letterbox{}, fmt.Errorf("failed to decode image: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return gocv.Mat{}, letterbox{}, ErrEmptyImage
	}

	lb := newLetterbox(mat.Cols(), mat.Rows(), size)

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, image.Pt(lb.newW, lb.newH), 0, 0, gocv.InterpolationLinear)

	padded := gocv.NewMat()
	defer padded.Close()
	gocv.CopyMakeBorder(resized, &padded, lb.top, lb.bottom, lb.left, lb.right,
		gocv.BorderConstant, color.RGBA{R: 114, G: 114, B: 114, A: 0})

	blob := gocv.BlobFromImage(padded, 1.0/255.0, image.Pt(size, size), gocv.NewScalar(0, 0, 0, 0), true, false)
	return blob, lb, nil
}

// decodeOptions carries the post-processing thresholds.
type decodeOptions struct {
	confidence    float64
	iou           float64
	maxDetections int
}

// decodeYOLO turns a YOLOv8-style output tensor into detections in source pixels.
// The tensor is [1, 4+nc, anchors] or its transpose; the first four channels are cx, cy, w, h.
func decodeYOLO(data []float32, dims []int, lb letterbox, labels Labels, opts decodeOptions) ([]dto.DetectionResult, error) {
	if len(dims) == 3 && dims[0] == 1 {
		dims = dims[1:]
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("unexpected output shape %v", dims)
	}

	channels, anchors := dims[0], dims[1]
	transposed := false
	if channels > anchors {
		channels, anchors = anchors, channels
		transposed = true
	}
	if channels < 5 {
		return nil, fmt.Errorf("output has %d channels, need at least 5", channels)
	}
	if len(data) < channels*anchors {
		return nil, fmt.Errorf("output holds %d values, shape %v needs %d", len(data), dims, channels*anchors)
	}

	at := func(c, i int) float64 {
		if transposed {
			return float64(data[i*channels+c])
		}
		return float64(data[c*anchors+i])
	}

	var (
		candidates []dto.DetectionResult
		boxes      []image.Rectangle
	)
	for i := 0; i < anchors; i++ {
		classID, score := 0, -1.0
		for c := 4; c < channels; c++ {
			if s := at(c, i); s > score {
				classID, score = c-4, s
			}
		}
		if score < opts.confidence {
			continue
		}

		cx, cy, w, h := at(0, i), at(1, i), at(2, i), at(3, i)
		// NMS boxes stay in network input space.
		offset := float64(classID * classOffset)
		boxes = append(boxes, image.Rect(
			int(math.Round(cx-w/2+offset)),
			int(math.Round(cy-h/2+offset)),
			int(math.Round(cx+w/2+offset)),
			int(math.Round(cy+h/2+offset)),
		))

		x1, y1 := lb.toSource(cx-w/2, cy-h/2)
		x2, y2 := lb.toSource(cx+w/2, cy+h/2)

		candidates = append(candidates, dto.DetectionResult{
			Label:      labels.Name(classID),
			Confidence: score,
			X:          x1,
			Y:          y1,
			Width:      x2 - x1,
			Height:     y2 - y1,
		})
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	scores := make([]float32, len(candidates))
	for i, c := range candidates {
		scores[i] = float32(c.Confidence)
	}

	// Candidates are already thresholded; OpenCV drops scores equal to its threshold.
	keep := gocv.NMSBoxes(boxes, scores, 0, float32(opts.iou))

	results := make([]dto.DetectionResult, 0, len(keep))
	for _, idx := range keep {
		results = append(results, candidates[idx])
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	if opts.maxDetections > 0 && len(results) > opts.maxDetections {
		results = results[:opts.maxDetections]
	}

	return results, nil
}
