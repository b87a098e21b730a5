package video

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Brownie44l1/image-classifier/internal/classifier"
)

func TestNotifier(t *testing.T) {
	t.Run("fires listeners once", func(t *testing.T) {
		var n Notifier
		var calls atomic.Int32
		n.Subscribe(func() { calls.Add(1) })
		n.Subscribe(func() { calls.Add(1) })

		n.Fire()
		n.Fire()

		assert.Equal(t, int32(2), calls.Load())
		assert.True(t, n.Fired())
	})

	t.Run("late subscribers run immediately", func(t *testing.T) {
		var n Notifier
		n.Fire()

		called := false
		n.Subscribe(func() { called = true })

		assert.True(t, called)
	})

	t.Run("concurrent fire and subscribe", func(t *testing.T) {
		var n Notifier
		var calls atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				n.Subscribe(func() { calls.Add(1) })
			}()
			go func() {
				defer wg.Done()
				n.Fire()
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(50), calls.Load())
	})
}

func TestElement(t *testing.T) {
	var w classifier.ElementWrapper = Element{Elt: "inner"}

	assert.Equal(t, "inner", w.Element())
}
