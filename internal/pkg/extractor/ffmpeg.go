package extractor

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/scribe/internal/pkg/utils"
	"github.com/rs/zerolog"
)

// FFMpeg extracts the audio track from a media file by invoking the
// external ffmpeg tool. Fractional progress is parsed from the tool's
// time= stderr reports against the ffprobe duration.
type FFMpeg struct {
	ffmpegPath  string
	ffprobePath string
	logWriter   *utils.ProcessLogWriter
}

// NewFFMpeg creates an extractor, checking the tools are on PATH
func NewFFMpeg(ffmpegPath, ffprobePath string) (*FFMpeg, error) {
	res := &FFMpeg{}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if _, err := exec.LookPath(ffmpegPath); err != nil {
		return nil, fmt.Errorf("no ffmpeg: %w", err)
	}
	if _, err := exec.LookPath(ffprobePath); err != nil {
		return nil, fmt.Errorf("no ffprobe: %w", err)
	}
	res.ffmpegPath = ffmpegPath
	res.ffprobePath = ffprobePath
	res.logWriter = utils.NewProcessLogWriter("ffmpeg", zerolog.DebugLevel)
	return res, nil
}

var timeRegexp = regexp.MustCompile(`time=(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// ExtractAudio converts src to 16kHz mono wav at dst,
// forwarding fractional progress in [0,100]
func (f *FFMpeg) ExtractAudio(ctx context.Context, src, dst string, progress func(percent float64, message string)) error {
	duration, err := f.Probe(ctx, src)
	if err != nil {
		return fmt.Errorf("can't get duration: %w", err)
	}
	goapp.Log.Info().Str("src", goapp.Sanitize(src)).Float64("durationSec", duration.Seconds()).Msg("extract audio")

	// 16kHz mono pcm - what speech models expect
	cmd := exec.CommandContext(ctx, f.ffmpegPath, "-i", src, "-vn",
		"-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1", "-y", dst)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("can't pipe stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("can't start ffmpeg: %w", err)
	}

	var lastLine string
	_ = f.logWriter.LogLines(stderr, func(line string) {
		lastLine = line
		if progress == nil || duration <= 0 {
			return
		}
		if cur, ok := parseTime(line); ok {
			p := min100(cur.Seconds() / duration.Seconds() * 100)
			progress(p, fmt.Sprintf("Extracting audio: %.1f%%", p))
		}
	})
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, lastLine)
	}
	if progress != nil {
		progress(100, "Audio extraction complete")
	}
	return nil
}

// Probe returns media duration using ffprobe
func (f *FFMpeg) Probe(ctx context.Context, src string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, f.ffprobePath, "-v", "error",
		"-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", src)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	ds := strings.TrimSpace(string(out))
	if ds == "" {
		return 0, fmt.Errorf("ffprobe returned no duration")
	}
	sec, err := strconv.ParseFloat(ds, 64)
	if err != nil {
		return 0, fmt.Errorf("can't parse duration '%s': %w", ds, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

func parseTime(line string) (time.Duration, bool) {
	m := timeRegexp.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mn, _ := strconv.Atoi(m[2])
	s, _ := strconv.ParseFloat(m[3], 64)
	return time.Duration((float64(h*3600+mn*60) + s) * float64(time.Second)), true
}

func min100(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}
