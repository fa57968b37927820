package registry

import (
	"context"
	"sync"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/scribe/internal/pkg/jobs"
	"github.com/airenas/scribe/internal/pkg/status"
	"github.com/airenas/scribe/internal/pkg/utils"
	"github.com/google/uuid"
)

// Broadcaster delivers job snapshots to observers. Delivery is best-effort,
// a failure must never fail the mutation that triggered it.
type Broadcaster interface {
	Broadcast(j *jobs.Job)
}

// Registry keeps all jobs in memory together with the FIFO intake queue.
// Jobs are never removed during process lifetime.
type Registry struct {
	lock        sync.Mutex
	jobs        map[string]*jobs.Job
	order       []string
	queue       *utils.IDQueue
	broadcaster Broadcaster
	now         func() time.Time
}

// NewRegistry creates the job registry
func NewRegistry(b Broadcaster) *Registry {
	return &Registry{jobs: map[string]*jobs.Job{}, queue: utils.NewIDQueue(),
		broadcaster: b, now: time.Now}
}

// Submit creates a job in QUEUED state, stores it and appends its ID
// to the intake queue
func (r *Registry) Submit(filename string, size int64, videoPath, targetLang, llmModel string) (*jobs.Job, error) {
	j := &jobs.Job{
		ID:             uuid.New().String(),
		Filename:       filename,
		FileSize:       size,
		Status:         status.Queued,
		Progress:       0,
		CurrentStage:   "Queued",
		CreatedAt:      r.now(),
		VideoPath:      videoPath,
		TargetLanguage: targetLang,
		LLMModel:       llmModel,
	}
	r.lock.Lock()
	r.jobs[j.ID] = j
	r.order = append(r.order, j.ID)
	res := j.Clone()
	r.lock.Unlock()
	r.queue.Push(j.ID)
	goapp.Log.Info().Str("ID", j.ID).Str("file", goapp.Sanitize(filename)).Msg("job queued")
	r.broadcast(res)
	return res, nil
}

// Get returns a snapshot of the job or utils.ErrJobNotFound
func (r *Registry) Get(id string) (*jobs.Job, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, utils.ErrJobNotFound
	}
	return j.Clone(), nil
}

// ListAll returns snapshots of all jobs in insertion order
func (r *Registry) ListAll() []*jobs.Job {
	r.lock.Lock()
	defer r.lock.Unlock()
	res := make([]*jobs.Job, 0, len(r.order))
	for _, id := range r.order {
		res = append(res, r.jobs[id].Clone())
	}
	return res
}

// UpdateProgress mutates status/progress/stage/message and broadcasts.
// An unknown ID is logged and swallowed - the call comes from deep inside
// stage progress callbacks and must not abort a pipeline.
func (r *Registry) UpdateProgress(id string, st status.Status, progress float64, stage, message string) {
	r.lock.Lock()
	j, ok := r.jobs[id]
	if !ok {
		r.lock.Unlock()
		goapp.Log.Warn().Str("ID", id).Msg("progress update for unknown job")
		return
	}
	j.Status = st
	j.Progress = progress
	j.CurrentStage = stage
	j.Message = message
	if st == status.Completed {
		t := r.now()
		j.CompletedAt = &t
	} else if st == status.Failed {
		t := r.now()
		j.CompletedAt = &t
		j.ErrorMsg = message
	}
	res := j.Clone()
	r.lock.Unlock()
	r.broadcast(res)
}

// SetAudioPath records the extracted audio location
func (r *Registry) SetAudioPath(id, path string) {
	r.mutate(id, func(j *jobs.Job) { j.AudioPath = path })
}

// SetRawTranscript records the raw transcript location
func (r *Registry) SetRawTranscript(id, path string) {
	r.mutate(id, func(j *jobs.Job) { j.TranscriptRawPath = path })
}

// SetDetectedLanguage records the detected source language
func (r *Registry) SetDetectedLanguage(id, lang string) {
	r.mutate(id, func(j *jobs.Job) { j.DetectedLanguage = lang })
}

// FinishProcessing records the final transcript and how it was produced
func (r *Registry) FinishProcessing(id, finalPath, modelUsed string, skipped bool) {
	r.mutate(id, func(j *jobs.Job) {
		j.TranscriptPath = finalPath
		j.LLMModelUsed = modelUsed
		j.LLMProcessingSkipped = skipped
	})
}

func (r *Registry) mutate(id string, fn func(j *jobs.Job)) {
	r.lock.Lock()
	j, ok := r.jobs[id]
	if !ok {
		r.lock.Unlock()
		goapp.Log.Warn().Str("ID", id).Msg("mutation for unknown job")
		return
	}
	fn(j)
	res := j.Clone()
	r.lock.Unlock()
	r.broadcast(res)
}

// Dequeue blocks until a queued job ID is available or ctx is done
func (r *Registry) Dequeue(ctx context.Context) (string, error) {
	return r.queue.Pop(ctx)
}

// QueueDepth returns the count of IDs not yet taken by a worker
func (r *Registry) QueueDepth() int {
	return r.queue.Len()
}

// Stats returns job counts per status
func (r *Registry) Stats() map[string]int {
	r.lock.Lock()
	defer r.lock.Unlock()
	res := map[string]int{}
	for _, j := range r.jobs {
		res[j.Status.String()]++
	}
	res["total"] = len(r.jobs)
	return res
}

func (r *Registry) broadcast(j *jobs.Job) {
	if r.broadcaster == nil {
		return
	}
	r.broadcaster.Broadcast(j)
}
