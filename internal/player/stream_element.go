package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
)

const streamChunkSize = 32 * 1024

// StreamElement plays a track by reading its stream over HTTP without
// decoding it. Position is estimated from bytes read against the
// Content-Length, scaled to the known duration.
type StreamElement struct {
	src      string
	client   *http.Client
	emit     func(MediaEvent)
	duration float64

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	position float64
	size     int64
	volume   float64
}

// NewStreamFactory opens StreamElements. When duration is known it is
// reported as loaded metadata before the factory returns.
func NewStreamFactory(client *http.Client, duration float64) ElementFactory {
	if client == nil {
		client = http.DefaultClient
	}
	return func(src string, emit func(MediaEvent)) (MediaElement, error) {
		if src == "" {
			return nil, errors.New("empty stream source")
		}
		if duration > 0 {
			emit(MediaEvent{Type: EventLoadedMetadata, Duration: duration})
		}
		return &StreamElement{src: src, client: client, emit: emit, duration: duration, volume: defaultVolume}, nil
	}
}

// Play opens the stream, resuming at the current position with a range
// request once the stream size is known. It returns once the response
// headers arrive.
func (e *StreamElement) Play(ctx context.Context) error {
	e.Pause()

	e.mu.Lock()
	var offset int64
	if e.position > 0 && e.size > 0 && e.duration > 0 {
		offset = int64(e.position / e.duration * float64(e.size))
	}
	e.mu.Unlock()

	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, e.src, nil)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to create stream request: %w", err)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}
	resp, err := e.client.Do(req)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to open stream: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		cancel()
		return fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusPartialContent {
		offset = 0
	}

	done := make(chan struct{})
	e.mu.Lock()
	if offset == 0 && resp.ContentLength > 0 {
		e.size = resp.ContentLength
	}
	size := e.size
	e.cancel = cancel
	e.done = done
	e.mu.Unlock()

	go e.read(streamCtx, resp, offset, size, done)
	return nil
}

func (e *StreamElement) read(ctx context.Context, resp *http.Response, offset, size int64, done chan struct{}) {
	defer close(done)
	defer resp.Body.Close()

	buf := make([]byte, streamChunkSize)
	read := offset
	for {
		n, err := resp.Body.Read(buf)
		read += int64(n)
		if n > 0 && size > 0 && e.duration > 0 {
			current := e.duration * float64(read) / float64(size)
			e.setPosition(current)
			e.emit(MediaEvent{Type: EventTimeUpdate, CurrentTime: current})
		}
		if errors.Is(err, io.EOF) {
			e.setPosition(0)
			e.emit(MediaEvent{Type: EventEnded})
			return
		}
		if err != nil {
			if ctx.Err() == nil {
				e.emit(MediaEvent{Type: EventError, Err: fmt.Errorf("stream read failed: %w", err)})
			}
			return
		}
	}
}

func (e *StreamElement) setPosition(seconds float64) {
	e.mu.Lock()
	e.position = seconds
	e.mu.Unlock()
}

// Pause stops reading and waits for the reader to exit.
func (e *StreamElement) Pause() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// SetCurrentTime takes effect on the next Play.
func (e *StreamElement) SetCurrentTime(seconds float64) {
	e.setPosition(seconds)
}

// SetVolume is recorded only; the stream is not decoded.
func (e *StreamElement) SetVolume(volume float64) {
	e.mu.Lock()
	e.volume = volume
	e.mu.Unlock()
}

func (e *StreamElement) Close() error {
	e.Pause()
	return nil
}
