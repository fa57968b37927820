package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/scribe/internal/pkg/broadcast"
	"github.com/airenas/scribe/internal/pkg/extractor"
	"github.com/airenas/scribe/internal/pkg/llm"
	"github.com/airenas/scribe/internal/pkg/registry"
	"github.com/airenas/scribe/internal/pkg/service"
	"github.com/airenas/scribe/internal/pkg/transcriber"
	"github.com/airenas/scribe/internal/pkg/utils"
	"github.com/airenas/scribe/internal/pkg/worker"
	"github.com/labstack/gommon/color"
	"github.com/spf13/viper"
)

func main() {
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config

	storageDir := cfg.GetString("storage.dir")
	if storageDir == "" {
		storageDir = "storage"
	}
	uploadDir := filepath.Join(storageDir, "uploads")
	audioDir := filepath.Join(storageDir, "audio")
	transcriptDir := filepath.Join(storageDir, "transcripts")
	for _, d := range []string{uploadDir, audioDir, transcriptDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			goapp.Log.Fatal().Err(err).Str("dir", d).Msg("can't create storage dir")
		}
	}

	wsKeeper := broadcast.NewWSConnKeeper()
	reg := registry.NewRegistry(wsKeeper)

	ffmpeg, err := extractor.NewFFMpeg(cfg.GetString("ffmpeg.path"), cfg.GetString("ffprobe.path"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init ffmpeg")
	}
	whisper, err := transcriber.NewWhisper(cfg.GetString("whisper.path"), cfg.GetString("whisper.model"), ffmpeg.Probe)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init whisper")
	}
	provider, err := newProvider(cfg)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init LLM provider")
	}
	llmService, err := llm.NewService(provider, cfg.GetString("llm.model"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init LLM service")
	}

	workerCount := cfg.GetInt("worker.count")
	if workerCount < 1 {
		workerCount = 2
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	doneCh, err := worker.StartWorkerService(ctx, &worker.ServiceData{
		Registry:      reg,
		Extractor:     ffmpeg,
		Transcriber:   whisper,
		LLM:           llmService,
		WorkerCount:   workerCount,
		AudioDir:      audioDir,
		TranscriptDir: transcriptDir,
	})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start worker service")
	}

	go utils.RunPerfEndpoint()

	go func() {
		err := service.StartWebServer(&service.Data{
			Port:        cfg.GetInt("port"),
			Jobs:        reg,
			LLM:         llmService,
			WSHandler:   wsKeeper,
			UploadDir:   uploadDir,
			WorkerCount: workerCount,
		})
		if err != nil {
			goapp.Log.Error().Err(err).Msg("can't start web server")
		}
		cancelFunc()
	}()

	/////////////////////// Waiting for terminate
	waitCh := make(chan os.Signal, 2)
	signal.Notify(waitCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-waitCh:
		goapp.Log.Info().Msg("Got exit signal")
	case <-doneCh:
		goapp.Log.Info().Msg("Service exit")
	}
	cancelFunc()
	select {
	case <-doneCh:
		goapp.Log.Info().Msg("All code returned. Now exit. Bye")
	case <-time.After(time.Second * 15):
		goapp.Log.Warn().Msg("Timeout gracefull shutdown")
	}
}

func newProvider(cfg *viper.Viper) (llm.Provider, error) {
	if cfg.GetString("llm.provider") == "openrouter" {
		return llm.NewOpenRouter(cfg.GetString("openrouter.key")), nil
	}
	url := cfg.GetString("llm.url")
	if url == "" {
		url = "http://localhost:11434"
	}
	res, err := llm.NewOllama(url, cfg.GetDuration("llm.timeout"))
	if err != nil {
		return nil, err
	}
	return res, nil
}

var (
	version = "DEV"
)

func printBanner() {
	banner := `
   _____ __________  ________  ______
  / ___// ____/ __ \/  _/ __ )/ ____/
  \__ \/ /   / /_/ // // __  / __/
 ___/ / /___/ _, _// // /_/ / /___
/____/\____/_/ |_/___/_____/_____/  v: %s

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/airenas/scribe"))
}
