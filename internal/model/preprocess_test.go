package model

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocess(t *testing.T) {
	t.Run("produces three planes of the target size", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 64, 48))

		data := Preprocess(img, 16, [3]float32{}, [3]float32{1, 1, 1})

		assert.Len(t, data, 3*16*16)
	})

	t.Run("normalizes with mean and std", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 8, 8))
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				img.Set(x, y, color.RGBA{R: 255, G: 0, B: 255, A: 255})
			}
		}

		data := Preprocess(img, 4, [3]float32{0.5, 0.5, 0.5}, [3]float32{0.5, 0.5, 0.5})

		require.Len(t, data, 3*4*4)
		plane := 16
		assert.InDelta(t, 1.0, data[0], 1e-3)
		assert.InDelta(t, -1.0, data[plane], 1e-3)
		assert.InDelta(t, 1.0, data[2*plane], 1e-3)
	})

	t.Run("handles images with a non-zero origin", func(t *testing.T) {
		img := image.NewGray(image.Rect(10, 10, 30, 30))

		data := Preprocess(img, 8, [3]float32{}, [3]float32{1, 1, 1})

		assert.Len(t, data, 3*8*8)
	})
}

func TestSoftmax(t *testing.T) {
	logits := []float32{1, 2, 3}

	Softmax(logits)

	var sum float32
	for _, v := range logits {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
	assert.Greater(t, logits[2], logits[1])
	assert.Greater(t, logits[1], logits[0])

	Softmax(nil)
}

func TestTopK(t *testing.T) {
	classes := []string{"cat", "dog", "fox", "owl"}
	scores := []float32{0.1, 0.5, 0.3, 0.1}

	tests := []struct {
		name   string
		k      int
		labels []string
	}{
		{name: "top one", k: 1, labels: []string{"dog"}},
		{name: "top three", k: 3, labels: []string{"dog", "fox", "cat"}},
		{name: "more than available", k: 10, labels: []string{"dog", "fox", "cat", "owl"}},
		{name: "zero", k: 0, labels: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preds := TopK(scores, classes, tt.k)

			labels := make([]string, len(preds))
			for i, p := range preds {
				labels[i] = p.Label
			}
			assert.Equal(t, tt.labels, labels)
			for i := 1; i < len(preds); i++ {
				assert.GreaterOrEqual(t, preds[i-1].Confidence, preds[i].Confidence)
			}
		})
	}

	t.Run("ignores scores without a label", func(t *testing.T) {
		preds := TopK([]float32{0.1, 0.2, 0.9}, []string{"a", "b"}, 3)

		require.Len(t, preds, 2)
		assert.Equal(t, "b", preds[0].Label)
	})
}
