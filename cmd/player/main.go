package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"versions/relay/internal/common"
	"versions/relay/internal/config"
	"versions/relay/internal/logging"
	"versions/relay/internal/models/dtos"
	"versions/relay/internal/player"
	"versions/relay/internal/providers"
	"versions/relay/internal/services"
)

// player streams one track from the VERSIONS backend, loading its metadata
// through the audio service, and prints progress until the track ends.
func main() {
	fileID := flag.String("file", "", "audio file id to play")
	flag.Parse()
	if *fileID == "" {
		log.Fatal("-file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logging.Close()
	logger := logging.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := providers.NewVersionsAPIProvider(cfg.Upstream.BaseURL, cfg.Upstream.FetchTimeout, nil)
	audio := services.NewAudioService(api, common.NewMemoryStore[string, *dtos.AudioMetadata](),
		common.LoaderOptions{Timeout: cfg.Upstream.FetchTimeout, Logger: logger})

	var duration float64
	if meta := audio.Metadata(ctx, *fileID); meta.DurationSeconds != nil {
		duration = *meta.DurationSeconds
	}

	// No client timeout: the stream runs for the length of the track.
	p := player.New(audio, player.NewStreamFactory(&http.Client{}, duration), logger)
	defer p.Close()

	if err := p.LoadTrack(ctx, *fileID); err != nil {
		log.Fatalf("load track: %v", err)
	}
	if err := p.Play(ctx); err != nil {
		log.Fatalf("play: %v", err)
	}

	state := p.State()
	fmt.Printf("%s - %s\n", state.Track.Title, state.Track.Artist)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.Pause()
			fmt.Println()
			return
		case <-ticker.C:
			state := p.State()
			fmt.Printf("\r%s / %s", player.FormatTime(state.CurrentTime), player.FormatTime(state.Duration))
			if state.LastError != "" {
				fmt.Println()
				log.Fatalf("playback error: %s", state.LastError)
			}
			if !state.Playing {
				fmt.Println()
				return
			}
		}
	}
}
