package status

// Status represents a job's pipeline state
type Status int

const (
	// Queued - job accepted, waiting for a worker
	Queued Status = iota + 1
	// ExtractingAudio - ffmpeg stage
	ExtractingAudio
	// Transcribing - speech-to-text stage
	Transcribing
	// Formatting - optional LLM post-processing stage
	Formatting
	// Completed - final step
	Completed
	// Failed - terminal failure, reachable from any non-terminal state
	Failed
)

var (
	statusName = map[Status]string{Queued: "QUEUED", ExtractingAudio: "EXTRACTING_AUDIO",
		Transcribing: "TRANSCRIBING", Formatting: "FORMATTING", Completed: "COMPLETED", Failed: "FAILED"}
	nameStatus = map[string]Status{"QUEUED": Queued, "EXTRACTING_AUDIO": ExtractingAudio,
		"TRANSCRIBING": Transcribing, "FORMATTING": Formatting, "COMPLETED": Completed, "FAILED": Failed}
)

func (st Status) String() string {
	return statusName[st]
}

// From returns status obj from string
func From(st string) Status {
	return nameStatus[st]
}

// IsTerminal returns true for states with no outgoing transitions
func (st Status) IsTerminal() bool {
	return st == Completed || st == Failed
}

// MarshalText implements encoding.TextMarshaler for JSON output
func (st Status) MarshalText() ([]byte, error) {
	return []byte(st.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (st *Status) UnmarshalText(b []byte) error {
	*st = From(string(b))
	return nil
}
