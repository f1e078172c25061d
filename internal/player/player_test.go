package player

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"versions/relay/internal/models/dtos"
)

type fakeSource struct {
	meta map[string]*dtos.AudioMetadata
}

func (s *fakeSource) Metadata(ctx context.Context, fileID string) *dtos.AudioMetadata {
	if m, ok := s.meta[fileID]; ok {
		return m
	}
	return &dtos.AudioMetadata{Title: fileID, Artist: "Unknown"}
}

func (s *fakeSource) StreamURL(fileID string) string {
	return "http://relay.test/api/v1/audio/" + fileID + "/stream"
}

type fakeElement struct {
	src     string
	emit    func(MediaEvent)
	playErr error
	playing bool
	volume  float64
	seekTo  float64
	closed  bool
}

func (e *fakeElement) Play(ctx context.Context) error {
	if e.playErr != nil {
		return e.playErr
	}
	e.playing = true
	return nil
}

func (e *fakeElement) Pause()                         { e.playing = false }
func (e *fakeElement) SetCurrentTime(seconds float64) { e.seekTo = seconds }
func (e *fakeElement) SetVolume(volume float64)       { e.volume = volume }

func (e *fakeElement) Close() error {
	e.closed = true
	return nil
}

func newTestPlayer() (*Player, *[]*fakeElement) {
	var elements []*fakeElement
	duration := 241.5
	source := &fakeSource{meta: map[string]*dtos.AudioMetadata{
		"track-42": {Title: "Live at Last", Artist: "Test Artist", DurationSeconds: &duration},
	}}
	factory := func(src string, emit func(MediaEvent)) (MediaElement, error) {
		el := &fakeElement{src: src, emit: emit}
		elements = append(elements, el)
		return el, nil
	}
	return New(source, factory, nil), &elements
}

func TestPlayer_LoadTrack(t *testing.T) {
	p, elements := newTestPlayer()

	require.NoError(t, p.LoadTrack(context.Background(), "track-42"))
	require.Len(t, *elements, 1)

	el := (*elements)[0]
	assert.Equal(t, "http://relay.test/api/v1/audio/track-42/stream", el.src)
	assert.Equal(t, 0.7, el.volume)

	state := p.State()
	require.NotNil(t, state.Track)
	assert.Equal(t, "Live at Last", state.Track.Title)
	assert.Equal(t, "Test Artist", state.Track.Artist)
	assert.False(t, state.Playing)
}

func TestPlayer_LoadReplacesPreviousElement(t *testing.T) {
	p, elements := newTestPlayer()
	ctx := context.Background()

	require.NoError(t, p.LoadTrack(ctx, "track-42"))
	require.NoError(t, p.Play(ctx))
	require.NoError(t, p.LoadTrack(ctx, "track-7"))

	first := (*elements)[0]
	assert.True(t, first.closed)
	assert.False(t, first.playing)

	// Events from the old element are ignored.
	first.emit(MediaEvent{Type: EventLoadedMetadata, Duration: 99})
	assert.Zero(t, p.State().Duration)
	assert.Equal(t, "track-7", p.State().Track.Title)
}

func TestPlayer_TogglePlayPause(t *testing.T) {
	p, _ := newTestPlayer()
	ctx := context.Background()

	// No track: nothing happens.
	require.NoError(t, p.TogglePlayPause(ctx))
	assert.False(t, p.State().Playing)
	assert.ErrorIs(t, p.Play(ctx), ErrNoTrack)

	require.NoError(t, p.LoadTrack(ctx, "track-42"))
	require.NoError(t, p.TogglePlayPause(ctx))
	assert.True(t, p.State().Playing)
	require.NoError(t, p.TogglePlayPause(ctx))
	assert.False(t, p.State().Playing)
}

func TestPlayer_PlayErrorSurfaces(t *testing.T) {
	p, elements := newTestPlayer()
	ctx := context.Background()
	require.NoError(t, p.LoadTrack(ctx, "track-42"))
	(*elements)[0].playErr = errors.New("unsupported format")

	err := p.Play(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")

	state := p.State()
	assert.False(t, state.Playing)
	assert.Equal(t, "unsupported format", state.LastError)
}

func TestPlayer_SetVolumeClamps(t *testing.T) {
	p, elements := newTestPlayer()
	require.NoError(t, p.LoadTrack(context.Background(), "track-42"))

	p.SetVolume(1.5)
	assert.Equal(t, 1.0, p.State().Volume)
	assert.Equal(t, 1.0, (*elements)[0].volume)

	p.SetVolume(-0.2)
	assert.Equal(t, 0.0, p.State().Volume)

	p.SetVolume(0.35)
	assert.Equal(t, 0.35, p.State().Volume)

	p.SetVolume(math.NaN())
	assert.Equal(t, 0.35, p.State().Volume)
}

func TestPlayer_SeekNeedsDuration(t *testing.T) {
	p, elements := newTestPlayer()
	require.NoError(t, p.LoadTrack(context.Background(), "track-42"))
	el := (*elements)[0]

	p.Seek(0.5)
	assert.Zero(t, el.seekTo)

	el.emit(MediaEvent{Type: EventLoadedMetadata, Duration: 200})
	p.Seek(0.5)
	assert.Equal(t, 100.0, el.seekTo)
}

func TestPlayer_Events(t *testing.T) {
	p, elements := newTestPlayer()
	ctx := context.Background()
	require.NoError(t, p.LoadTrack(ctx, "track-42"))
	require.NoError(t, p.Play(ctx))
	el := (*elements)[0]

	el.emit(MediaEvent{Type: EventLoadedMetadata, Duration: 200})
	el.emit(MediaEvent{Type: EventTimeUpdate, CurrentTime: 50})

	state := p.State()
	assert.Equal(t, 200.0, state.Duration)
	assert.Equal(t, 50.0, state.CurrentTime)
	assert.Equal(t, 25.0, p.Progress())

	el.emit(MediaEvent{Type: EventEnded})
	assert.False(t, p.State().Playing)

	el.emit(MediaEvent{Type: EventError, Err: errors.New("decode error")})
	assert.Equal(t, "decode error", p.State().LastError)
}

func TestPlayer_Close(t *testing.T) {
	p, elements := newTestPlayer()
	ctx := context.Background()
	require.NoError(t, p.LoadTrack(ctx, "track-42"))
	require.NoError(t, p.Play(ctx))

	p.Close()
	assert.True(t, (*elements)[0].closed)

	state := p.State()
	assert.Nil(t, state.Track)
	assert.False(t, state.Playing)
}

// emittingElement reports events synchronously from Pause and Close.
type emittingElement struct {
	fakeElement
}

func (e *emittingElement) Pause() {
	e.playing = false
	e.emit(MediaEvent{Type: EventTimeUpdate, CurrentTime: 12})
}

func (e *emittingElement) Close() error {
	e.closed = true
	e.emit(MediaEvent{Type: EventEnded})
	return nil
}

func withDeadline(t *testing.T, what string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s did not return", what)
	}
}

func TestPlayer_ElementMayEmitSynchronously(t *testing.T) {
	var elements []*emittingElement
	factory := func(src string, emit func(MediaEvent)) (MediaElement, error) {
		// Already buffered: metadata is known before the factory returns.
		emit(MediaEvent{Type: EventLoadedMetadata, Duration: 180})
		el := &emittingElement{fakeElement{src: src, emit: emit}}
		elements = append(elements, el)
		return el, nil
	}
	p := New(&fakeSource{}, factory, nil)
	ctx := context.Background()

	var err error
	withDeadline(t, "LoadTrack", func() { err = p.LoadTrack(ctx, "track-1") })
	require.NoError(t, err)
	assert.Equal(t, 180.0, p.State().Duration)

	withDeadline(t, "Pause", p.Pause)
	assert.Equal(t, 12.0, p.State().CurrentTime)

	withDeadline(t, "LoadTrack replacing an element", func() { err = p.LoadTrack(ctx, "track-2") })
	require.NoError(t, err)
	require.Len(t, elements, 2)
	assert.True(t, elements[0].closed)
	assert.Equal(t, "track-2", p.State().Track.Title)
	assert.Zero(t, p.State().CurrentTime)

	withDeadline(t, "Close", p.Close)
	assert.True(t, elements[1].closed)
	assert.Nil(t, p.State().Track)
}

func TestPlayer_LoadTrackFactoryError(t *testing.T) {
	p := New(&fakeSource{}, func(string, func(MediaEvent)) (MediaElement, error) {
		return nil, errors.New("no audio device")
	}, nil)

	err := p.LoadTrack(context.Background(), "track-1")
	require.Error(t, err)
	assert.Nil(t, p.State().Track)
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{math.NaN(), "0:00"},
		{-3, "0:00"},
		{5, "0:05"},
		{59.9, "0:59"},
		{60, "1:00"},
		{241.5, "4:01"},
		{3600, "60:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTime(tt.seconds), "FormatTime(%v)", tt.seconds)
	}
}
