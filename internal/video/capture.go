package video

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/Brownie44l1/image-classifier/internal/classifier"
)

// ErrNoFrame is returned by Frame before the capture has produced a frame.
var ErrNoFrame = errors.New("video: no frame captured yet")

var _ classifier.Source = (*Capture)(nil)

// Capture reads frames from a camera or video file in the background and
// keeps the most recent one.
type Capture struct {
	vc      *gocv.VideoCapture
	logger  *zap.Logger
	started Notifier

	mu    sync.RWMutex
	frame image.Image

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Open starts capturing from device, which is either a camera index such as
// "0" or a file path or stream URL.
func Open(device string, logger *zap.Logger) (*Capture, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var target interface{} = device
	if id, err := strconv.Atoi(device); err == nil {
		target = id
	}
	vc, err := gocv.OpenVideoCapture(target)
	if err != nil {
		return nil, fmt.Errorf("failed to open video device %q: %w", device, err)
	}

	c := &Capture{
		vc:     vc,
		logger: logger.With(zap.String("device", device)),
		done:   make(chan struct{}),
	}
	c.wg.Add(1)
	go c.run()
	return c, nil
}

func (c *Capture) run() {
	defer c.wg.Done()

	mat := gocv.NewMat()
	defer mat.Close()

	for {
		select {
		case <-c.done:
			return
		default:
		}

		if ok := c.vc.Read(&mat); !ok {
			c.logger.Info("Video stream ended")
			return
		}
		if mat.Empty() {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		img, err := mat.ToImage()
		if err != nil {
			c.logger.Warn("Failed to convert frame", zap.Error(err))
			continue
		}

		c.mu.Lock()
		c.frame = img
		c.mu.Unlock()

		if !c.started.Fired() {
			c.logger.Info("Video source started", zap.Int("width", mat.Cols()), zap.Int("height", mat.Rows()))
			c.started.Fire()
		}
	}
}

// Frame returns the most recent frame.
func (c *Capture) Frame() (image.Image, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.frame == nil {
		return nil, ErrNoFrame
	}
	return c.frame, nil
}

// OnLoadStart registers fn to run once the first frame has been captured.
func (c *Capture) OnLoadStart(fn func()) {
	c.started.Subscribe(fn)
}

// Close stops capturing and releases the device.
func (c *Capture) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.wg.Wait()
	})
	return c.vc.Close()
}
