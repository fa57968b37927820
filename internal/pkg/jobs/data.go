package jobs

import (
	"time"

	"github.com/airenas/scribe/internal/pkg/status"
)

// Job holds one submitted media file's pipeline run and its current state.
// Identity fields are set once at creation. Mutable fields are written only
// through the registry, by the worker owning the job.
type Job struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	FileSize int64  `json:"file_size"`

	Status       status.Status `json:"status"`
	Progress     float64       `json:"progress"`
	CurrentStage string        `json:"current_stage"`
	Message      string        `json:"message,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ErrorMsg    string     `json:"error_message,omitempty"`

	VideoPath         string `json:"video_path"`
	AudioPath         string `json:"audio_path,omitempty"`
	TranscriptRawPath string `json:"transcript_raw_path,omitempty"`
	TranscriptPath    string `json:"transcript_path,omitempty"`

	TargetLanguage       string `json:"target_language,omitempty"`
	LLMModel             string `json:"llm_model,omitempty"`
	DetectedLanguage     string `json:"detected_language,omitempty"`
	LLMProcessingSkipped bool   `json:"llm_processing_skipped"`
	LLMModelUsed         string `json:"llm_model_used,omitempty"`
}

// Clone returns an independent snapshot of the job
func (j *Job) Clone() *Job {
	res := *j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		res.CompletedAt = &t
	}
	return &res
}
