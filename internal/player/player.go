package player

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"versions/relay/internal/models/dtos"
)

const defaultVolume = 0.7

var ErrNoTrack = errors.New("no track loaded")

// TrackSource resolves a file id to metadata and a stream address.
// services.AudioService satisfies it.
type TrackSource interface {
	Metadata(ctx context.Context, fileID string) *dtos.AudioMetadata
	StreamURL(fileID string) string
}

// MediaElement is the playback capability behind the player.
type MediaElement interface {
	Play(ctx context.Context) error
	Pause()
	SetCurrentTime(seconds float64)
	SetVolume(volume float64)
	Close() error
}

type EventType int

const (
	EventLoadedMetadata EventType = iota
	EventTimeUpdate
	EventEnded
	EventError
)

// MediaEvent is reported by a MediaElement while it plays.
type MediaEvent struct {
	Type        EventType
	Duration    float64
	CurrentTime float64
	Err         error
}

// ElementFactory opens a media element for src. The element reports its
// events through emit.
type ElementFactory func(src string, emit func(MediaEvent)) (MediaElement, error)

type Track struct {
	FileID   string   `json:"id"`
	Title    string   `json:"title"`
	Artist   string   `json:"artist"`
	Duration *float64 `json:"duration,omitempty"`
}

type State struct {
	Playing     bool    `json:"is_playing"`
	Track       *Track  `json:"current_track,omitempty"`
	CurrentTime float64 `json:"current_time"`
	Duration    float64 `json:"duration"`
	Volume      float64 `json:"volume"`
	LastError   string  `json:"last_error,omitempty"`
}

// Player holds at most one loaded track and its playback state.
type Player struct {
	source     TrackSource
	newElement ElementFactory
	logger     *zap.SugaredLogger

	mu         sync.Mutex
	element    MediaElement
	generation int
	track      *Track
	playing    bool
	volume     float64
	current    float64
	duration   float64
	lastErr    error
}

func New(source TrackSource, factory ElementFactory, logger *zap.SugaredLogger) *Player {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Player{
		source:     source,
		newElement: factory,
		logger:     logger.Named("player"),
		volume:     defaultVolume,
	}
}

// LoadTrack replaces the current track with fileID. Metadata comes from
// the cache-backed source, so a failed lookup still loads with fallback
// metadata.
//
// Elements are opened and closed without holding the player lock, so an
// element may report events from inside the factory or Close.
func (p *Player) LoadTrack(ctx context.Context, fileID string) error {
	meta := p.source.Metadata(ctx, fileID)
	src := p.source.StreamURL(fileID)

	p.mu.Lock()
	old := p.detachLocked()
	gen := p.generation
	p.mu.Unlock()
	p.release(old)

	element, err := p.newElement(src, func(ev MediaEvent) { p.handleEvent(gen, ev) })
	if err != nil {
		return fmt.Errorf("failed to load track %s: %w", fileID, err)
	}

	p.mu.Lock()
	if gen != p.generation {
		// A later LoadTrack or Close won.
		p.mu.Unlock()
		p.release(element)
		return nil
	}
	track := trackFrom(fileID, meta)
	p.element = element
	p.track = track
	volume := p.volume
	p.mu.Unlock()

	element.SetVolume(volume)
	p.logger.Infow("loaded track", "file_id", fileID, "title", track.Title)
	return nil
}

func trackFrom(fileID string, meta *dtos.AudioMetadata) *Track {
	t := &Track{FileID: fileID, Title: "Unknown Title", Artist: "Unknown Artist"}
	if meta == nil {
		return t
	}
	if meta.Title != "" {
		t.Title = meta.Title
	}
	if meta.Artist != "" {
		t.Artist = meta.Artist
	}
	t.Duration = meta.DurationSeconds
	return t
}

// Play starts playback. A playback failure is returned and leaves the
// player paused. The element may report Ended before Play returns.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()
	element := p.element
	if element != nil {
		p.playing = true
	}
	p.mu.Unlock()
	if element == nil {
		return ErrNoTrack
	}

	if err := element.Play(ctx); err != nil {
		p.mu.Lock()
		if p.element == element {
			p.playing = false
			p.lastErr = err
		}
		p.mu.Unlock()
		p.logger.Warnw("playback failed", "error", err)
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	element := p.element
	p.playing = false
	p.mu.Unlock()
	if element != nil {
		element.Pause()
	}
}

func (p *Player) TogglePlayPause(ctx context.Context) error {
	p.mu.Lock()
	loaded, playing := p.element != nil, p.playing
	p.mu.Unlock()

	if !loaded {
		return nil
	}
	if playing {
		p.Pause()
		return nil
	}
	return p.Play(ctx)
}

// SetVolume clamps volume to [0, 1].
func (p *Player) SetVolume(volume float64) {
	if math.IsNaN(volume) {
		return
	}
	volume = math.Max(0, math.Min(1, volume))

	p.mu.Lock()
	p.volume = volume
	element := p.element
	p.mu.Unlock()
	if element != nil {
		element.SetVolume(volume)
	}
}

// Seek moves to fraction of the duration. It is a no-op until the
// duration is known.
func (p *Player) Seek(fraction float64) {
	p.mu.Lock()
	element, duration := p.element, p.duration
	p.mu.Unlock()
	if element == nil || duration <= 0 || math.IsNaN(fraction) {
		return
	}
	element.SetCurrentTime(fraction * duration)
}

// Close stops playback and unloads the track.
func (p *Player) Close() {
	p.mu.Lock()
	old := p.detachLocked()
	p.mu.Unlock()
	p.release(old)
}

// detachLocked starts a new generation with empty playback state and
// returns the element it replaced.
func (p *Player) detachLocked() MediaElement {
	old := p.element
	p.element = nil
	p.generation++
	p.track = nil
	p.playing = false
	p.current = 0
	p.duration = 0
	p.lastErr = nil
	return old
}

func (p *Player) release(element MediaElement) {
	if element == nil {
		return
	}
	element.Pause()
	if err := element.Close(); err != nil {
		p.logger.Debugw("failed to close media element", "error", err)
	}
}

func (p *Player) handleEvent(gen int, ev MediaEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return
	}

	switch ev.Type {
	case EventLoadedMetadata:
		p.duration = ev.Duration
	case EventTimeUpdate:
		p.current = ev.CurrentTime
	case EventEnded:
		p.playing = false
	case EventError:
		p.lastErr = ev.Err
		p.playing = false
		p.logger.Warnw("audio playback error", "error", ev.Err)
	}
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := State{
		Playing:     p.playing,
		CurrentTime: p.current,
		Duration:    p.duration,
		Volume:      p.volume,
	}
	if p.track != nil {
		t := *p.track
		s.Track = &t
	}
	if p.lastErr != nil {
		s.LastError = p.lastErr.Error()
	}
	return s
}

// Progress is the playback position as a percentage of the duration.
func (p *Player) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.duration <= 0 {
		return 0
	}
	return p.current / p.duration * 100
}

// FormatTime renders seconds as m:ss. Zero, negative and NaN render as 0:00.
func FormatTime(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "0:00"
	}
	mins := int(seconds / 60)
	secs := int(math.Mod(seconds, 60))
	return fmt.Sprintf("%d:%02d", mins, secs)
}
