package model

import (
	"image"
	"math"
	"sort"

	"github.com/nfnt/resize"

	"github.com/Brownie44l1/image-classifier/internal/classifier"
)

// Preprocess resizes img to size x size and lays it out as normalized CHW
// float32 values.
func Preprocess(img image.Image, size int, mean, std [3]float32) []float32 {
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height

	inputData := make([]float32, 3*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			pixelIndex := y*width + x
			inputData[pixelIndex] = (float32(r)/65535.0 - mean[0]) / std[0]
			inputData[plane+pixelIndex] = (float32(g)/65535.0 - mean[1]) / std[1]
			inputData[2*plane+pixelIndex] = (float32(b)/65535.0 - mean[2]) / std[2]
		}
	}
	return inputData
}

// Softmax converts logits to probabilities in place.
func Softmax(logits []float32) {
	if len(logits) == 0 {
		return
	}
	maxVal := logits[0]
	for _, v := range logits[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxVal))
		logits[i] = float32(e)
		sum += e
	}
	for i := range logits {
		logits[i] = float32(float64(logits[i]) / sum)
	}
}

// TopK pairs scores with their class labels and returns the k highest, ordered
// by descending confidence. Scores beyond the label list are ignored.
func TopK(scores []float32, classes []string, k int) []classifier.Prediction {
	n := len(scores)
	if len(classes) < n {
		n = len(classes)
	}

	preds := make([]classifier.Prediction, n)
	for i := 0; i < n; i++ {
		preds[i] = classifier.Prediction{Label: classes[i], Confidence: scores[i]}
	}
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Confidence > preds[j].Confidence
	})

	if k < 0 {
		k = 0
	}
	if k < len(preds) {
		preds = preds[:k]
	}
	return preds
}
