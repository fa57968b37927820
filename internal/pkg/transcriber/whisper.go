package transcriber

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/scribe/internal/pkg/utils"
	"github.com/rs/zerolog"
)

// DurationProvider returns media length for progress estimation
type DurationProvider func(ctx context.Context, path string) (time.Duration, error)

// Whisper transcribes audio by invoking an external whisper CLI.
// The tool prints timestamped segments to stdout; progress is estimated
// from segment end time against the audio duration.
type Whisper struct {
	binPath   string
	modelPath string
	probe     DurationProvider
	logWriter *utils.ProcessLogWriter
}

// NewWhisper creates a transcriber executor
func NewWhisper(binPath, modelPath string, probe DurationProvider) (*Whisper, error) {
	if binPath == "" {
		return nil, fmt.Errorf("no whisper binary path")
	}
	if modelPath == "" {
		return nil, fmt.Errorf("no whisper model path")
	}
	if probe == nil {
		return nil, fmt.Errorf("no duration provider")
	}
	if _, err := exec.LookPath(binPath); err != nil {
		return nil, fmt.Errorf("no whisper binary: %w", err)
	}
	return &Whisper{binPath: binPath, modelPath: modelPath, probe: probe,
		logWriter: utils.NewProcessLogWriter("whisper", zerolog.DebugLevel)}, nil
}

// Transcribe runs speech-to-text on audioPath and writes the transcript to dst.
// Paragraphing follows the pauses between recognized segments.
func (w *Whisper) Transcribe(ctx context.Context, audioPath, dst string, progress func(percent float64, message string)) error {
	if progress != nil {
		progress(5, "Loading speech model...")
	}
	duration, err := w.probe(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("can't get duration: %w", err)
	}
	goapp.Log.Info().Str("audio", goapp.Sanitize(audioPath)).Float64("durationSec", duration.Seconds()).Msg("transcribe")

	cmd := exec.CommandContext(ctx, w.binPath, "-m", w.modelPath, "-f", audioPath, "-l", "auto")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("can't pipe stdout: %w", err)
	}
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("can't start whisper: %w", err)
	}

	var segments []segment
	_ = w.logWriter.LogLines(stdout, func(line string) {
		seg, ok := parseSegment(line)
		if !ok {
			return
		}
		segments = append(segments, seg)
		if progress != nil && duration > 0 {
			p := seg.end.Seconds() / duration.Seconds() * 100
			if p > 95 { // keep the last bit for write-out
				p = 95
			}
			progress(p, fmt.Sprintf("Transcribing... (%d%%)", int(p)))
		}
	})
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("whisper failed: %w", err)
	}

	text := formatSegments(segments)
	if err := utils.WriteFile(dst, []byte(text)); err != nil {
		return fmt.Errorf("can't save transcript: %w", err)
	}
	if progress != nil {
		progress(100, "Transcription complete")
	}
	return nil
}
