package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/scribe/internal/pkg/jobs"
	"github.com/airenas/scribe/internal/pkg/status"
	"github.com/airenas/scribe/internal/pkg/utils"
)

// Registry provides job state and the intake queue
type Registry interface {
	Dequeue(ctx context.Context) (string, error)
	Get(id string) (*jobs.Job, error)
	UpdateProgress(id string, st status.Status, progress float64, stage, message string)
	SetAudioPath(id, path string)
	SetRawTranscript(id, path string)
	SetDetectedLanguage(id, lang string)
	FinishProcessing(id, finalPath, modelUsed string, skipped bool)
}

// Extractor extracts the audio track from a media file
type Extractor interface {
	ExtractAudio(ctx context.Context, src, dst string, progress func(float64, string)) error
}

// Transcriber turns an audio file into text
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, dst string, progress func(float64, string)) error
}

// LLM provides transcript post-processing
type LLM interface {
	Available(ctx context.Context) bool
	DetectLanguage(ctx context.Context, text, model string) (string, error)
	FormatTranscript(ctx context.Context, text, model string, progress func(float64, string)) (string, error)
	TranslateAndFormat(ctx context.Context, text, targetLang, model string, progress func(float64, string)) (string, error)
}

// ServiceData keeps data required for service work
type ServiceData struct {
	Registry    Registry
	Extractor   Extractor
	Transcriber Transcriber
	LLM         LLM

	WorkerCount   int
	AudioDir      string
	TranscriptDir string
}

const (
	stageExtraction = "Audio extraction"
	stageTranscribe = "Transcription"
)

// StartWorkerService starts the job processing loops
// returns channel closed when all workers are finished
func StartWorkerService(ctx context.Context, data *ServiceData) (chan struct{}, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	goapp.Log.Info().Int("workers", data.WorkerCount).Msg("Starting workers")
	var wg sync.WaitGroup
	for i := 0; i < data.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workLoop(ctx, id, data)
		}(i + 1)
	}
	res := make(chan struct{}, 1)
	go func() {
		wg.Wait()
		goapp.Log.Info().Msg("Workers finished")
		res <- struct{}{}
	}()
	return res, nil
}

func workLoop(ctx context.Context, workerID int, data *ServiceData) {
	goapp.Log.Info().Int("worker", workerID).Msg("started")
	for {
		id, err := data.Registry.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				goapp.Log.Info().Int("worker", workerID).Msg("exit work loop")
				return
			}
			goapp.Log.Error().Err(err).Int("worker", workerID).Msg("dequeue failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		goapp.Log.Info().Int("worker", workerID).Str("ID", id).Msg("picked up job")
		processJob(ctx, id, data)
	}
}

// processJob drives one job to a terminal state. Failures never
// escape, so one bad job can't kill the worker loop
func processJob(ctx context.Context, id string, data *ServiceData) {
	tracker := &progressTracker{registry: data.Registry, id: id}
	defer func() {
		if r := recover(); r != nil {
			goapp.Log.Error().Str("ID", id).Msgf("panic recovered: %v", r)
			tracker.fail(fmt.Sprintf("%v", r))
		}
	}()
	job, err := data.Registry.Get(id)
	if err != nil {
		goapp.Log.Error().Err(err).Str("ID", id).Msg("can't load job")
		return
	}
	if err := runPipeline(ctx, job, data, tracker); err != nil {
		if ctx.Err() != nil {
			goapp.Log.Info().Str("ID", id).Msg("job interrupted by shutdown")
			return
		}
		goapp.Log.Error().Err(err).Str("ID", id).Msg("job failed")
		tracker.fail(err.Error())
		return
	}
	goapp.Log.Info().Str("ID", id).Msg("job completed")
}

func runPipeline(ctx context.Context, job *jobs.Job, data *ServiceData, tracker *progressTracker) error {
	if err := extractAudio(ctx, job, data, tracker); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	rawPath, err := transcribe(ctx, job, data, tracker)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	finalPath, modelUsed, skipped, err := postProcess(ctx, job, rawPath, data, tracker)
	if err != nil {
		return err
	}
	data.Registry.FinishProcessing(job.ID, finalPath, modelUsed, skipped)
	tracker.report(status.Completed, 100, "Completed", "Job completed successfully")
	return nil
}

func extractAudio(ctx context.Context, job *jobs.Job, data *ServiceData, tracker *progressTracker) error {
	tracker.report(status.ExtractingAudio, 0, "Starting audio extraction", "Initializing FFmpeg...")
	audioPath := filepath.Join(data.AudioDir, utils.FileStem(job.Filename)+".wav")
	err := data.Extractor.ExtractAudio(ctx, job.VideoPath, audioPath, func(p float64, msg string) {
		tracker.report(status.ExtractingAudio, p*0.4, "Extracting audio", msg)
	})
	if err != nil {
		return utils.NewErrStageFailed(stageExtraction, err)
	}
	data.Registry.SetAudioPath(job.ID, audioPath)
	return nil
}

func transcribe(ctx context.Context, job *jobs.Job, data *ServiceData, tracker *progressTracker) (string, error) {
	tracker.report(status.Transcribing, 40, "Starting transcription", "Loading speech model...")
	audioPath := filepath.Join(data.AudioDir, utils.FileStem(job.Filename)+".wav")
	rawPath := filepath.Join(data.TranscriptDir, utils.FileStem(job.Filename)+"_transcript.txt")
	err := data.Transcriber.Transcribe(ctx, audioPath, rawPath, func(p float64, msg string) {
		tracker.report(status.Transcribing, 40+p*0.3, "Transcribing", msg)
	})
	if err != nil {
		return "", utils.NewErrStageFailed(stageTranscribe, err)
	}
	data.Registry.SetRawTranscript(job.ID, rawPath)
	return rawPath, nil
}

// postProcess runs the optional formatting stage. Provider problems
// degrade to the raw transcript instead of failing the job
func postProcess(ctx context.Context, job *jobs.Job, rawPath string, data *ServiceData, tracker *progressTracker) (string, string, bool, error) {
	if job.TargetLanguage == "" || job.LLMModel == "" {
		tracker.report(status.Transcribing, 95, "Finalizing", "Finalizing transcript")
		return rawPath, "", true, nil
	}
	fallback := func(msg string) (string, string, bool, error) {
		goapp.Log.Warn().Str("ID", job.ID).Msg(msg)
		tracker.report(status.Formatting, 95, "Finalizing", "Using raw transcript")
		return rawPath, "", true, nil
	}
	tracker.report(status.Formatting, 70, "LLM processing", "Checking LLM availability...")
	if !data.LLM.Available(ctx) {
		return fallback("LLM unavailable, using raw transcript")
	}
	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return "", "", false, fmt.Errorf("can't read transcript: %w", err)
	}
	text := string(raw)
	if strings.TrimSpace(text) == "" {
		return fallback("empty transcript, skipping LLM")
	}
	tracker.report(status.Formatting, 75, "LLM processing", "Detecting language...")
	detected, err := data.LLM.DetectLanguage(ctx, text, job.LLMModel)
	if err != nil {
		goapp.Log.Warn().Err(err).Str("ID", job.ID).Msg("language detection failed")
	}
	if detected != "" {
		data.Registry.SetDetectedLanguage(job.ID, detected)
	}
	llmProgress := func(q float64, msg string) {
		tracker.report(status.Formatting, 80+q*0.15, "LLM processing", msg)
	}
	var processed string
	if detected == job.TargetLanguage {
		processed, err = data.LLM.FormatTranscript(ctx, text, job.LLMModel, llmProgress)
	} else {
		processed, err = data.LLM.TranslateAndFormat(ctx, text, job.TargetLanguage, job.LLMModel, llmProgress)
	}
	if err != nil {
		goapp.Log.Warn().Err(err).Str("ID", job.ID).Msg("generate failed")
		return fallback("LLM processing failed, using raw transcript")
	}
	if strings.TrimSpace(processed) == "" {
		return fallback("empty LLM output, using raw transcript")
	}
	finalPath := filepath.Join(data.TranscriptDir, utils.FileStem(job.Filename)+"_final.txt")
	if err := utils.WriteFile(finalPath, []byte(processed)); err != nil {
		return "", "", false, fmt.Errorf("can't write transcript: %w", err)
	}
	tracker.report(status.Formatting, 95, "Finalizing", "Saving transcript")
	return finalPath, job.LLMModel, false, nil
}

// progressTracker remembers the last reported value so a failure
// keeps the progress reached
type progressTracker struct {
	registry Registry
	id       string
	lock     sync.Mutex
	last     float64
}

func (t *progressTracker) report(st status.Status, progress float64, stage, message string) {
	t.lock.Lock()
	if progress < t.last {
		progress = t.last
	}
	t.last = progress
	t.lock.Unlock()
	t.registry.UpdateProgress(t.id, st, progress, stage, message)
}

func (t *progressTracker) fail(message string) {
	t.lock.Lock()
	progress := t.last
	t.lock.Unlock()
	t.registry.UpdateProgress(t.id, status.Failed, progress, "Failed", message)
}

func validate(data *ServiceData) error {
	if data.Registry == nil {
		return fmt.Errorf("no registry")
	}
	if data.Extractor == nil {
		return fmt.Errorf("no extractor")
	}
	if data.Transcriber == nil {
		return fmt.Errorf("no transcriber")
	}
	if data.LLM == nil {
		return fmt.Errorf("no LLM service")
	}
	if data.WorkerCount < 1 {
		return fmt.Errorf("no worker count provided")
	}
	if data.AudioDir == "" {
		return fmt.Errorf("no audio dir")
	}
	if data.TranscriptDir == "" {
		return fmt.Errorf("no transcript dir")
	}
	return nil
}
