package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture(t *testing.T) {
	t.Run("settles only once", func(t *testing.T) {
		f := newFuture[int]()
		assert.False(t, f.Settled())

		f.settle(1, nil)
		f.settle(2, errors.New("ignored"))

		got, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, got)
		assert.True(t, f.Settled())
	})

	t.Run("await honours context", func(t *testing.T) {
		f := newFuture[int]()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := f.Await(ctx)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("observers see the same outcome as waiters", func(t *testing.T) {
		f := newFuture[string]()
		boom := errors.New("boom")
		observed := make(chan error, 1)
		f.Observe(func(_ string, err error) { observed <- err })

		f.settle("", boom)

		_, err := f.Await(context.Background())
		assert.Same(t, boom, err)
		select {
		case got := <-observed:
			assert.Same(t, boom, got)
		case <-time.After(time.Second):
			t.Fatal("observer was not called")
		}
	})

	t.Run("resolved future is settled", func(t *testing.T) {
		f := Resolved("done", nil)

		assert.True(t, f.Settled())
		got, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "done", got)
	})
}
