package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/airenas/scribe/internal/pkg/jobs"
	"github.com/airenas/scribe/internal/pkg/status"
	"github.com/airenas/scribe/internal/pkg/test"
	"github.com/airenas/scribe/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testBroadcaster struct {
	lock sync.Mutex
	got  []*jobs.Job
}

func (b *testBroadcaster) Broadcast(j *jobs.Job) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.got = append(b.got, j)
}

func (b *testBroadcaster) calls() []*jobs.Job {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]*jobs.Job{}, b.got...)
}

func initTest(t *testing.T) (*Registry, *testBroadcaster) {
	t.Helper()
	b := &testBroadcaster{}
	return NewRegistry(b), b
}

func TestSubmit(t *testing.T) {
	r, b := initTest(t)
	j, err := r.Submit("olia.mp4", 100, "storage/uploads/olia.mp4", "en", "m1")
	require.Nil(t, err)
	require.NotEmpty(t, j.ID)
	assert.Equal(t, status.Queued, j.Status)
	assert.Equal(t, float64(0), j.Progress)
	assert.Equal(t, "olia.mp4", j.Filename)
	assert.Equal(t, int64(100), j.FileSize)
	assert.Equal(t, "en", j.TargetLanguage)
	assert.Equal(t, "m1", j.LLMModel)
	assert.Equal(t, 1, r.QueueDepth())
	require.Equal(t, 1, len(b.calls()))
	assert.Equal(t, j.ID, b.calls()[0].ID)
}

func TestGet(t *testing.T) {
	r, _ := initTest(t)
	j, err := r.Submit("olia.mp4", 100, "p", "", "")
	require.Nil(t, err)
	got, err := r.Get(j.ID)
	require.Nil(t, err)
	assert.Equal(t, j.ID, got.ID)
}

func TestGet_NotFound(t *testing.T) {
	r, _ := initTest(t)
	_, err := r.Get("xxx")
	assert.ErrorIs(t, err, utils.ErrJobNotFound)
}

func TestGet_ReturnsSnapshot(t *testing.T) {
	r, _ := initTest(t)
	j, _ := r.Submit("olia.mp4", 100, "p", "", "")
	got, err := r.Get(j.ID)
	require.Nil(t, err)
	got.Progress = 55
	again, err := r.Get(j.ID)
	require.Nil(t, err)
	assert.Equal(t, float64(0), again.Progress)
}

func TestListAll_InsertionOrder(t *testing.T) {
	r, _ := initTest(t)
	var ids []string
	for i := 0; i < 5; i++ {
		j, err := r.Submit("olia.mp4", 100, "p", "", "")
		require.Nil(t, err)
		ids = append(ids, j.ID)
	}
	all := r.ListAll()
	require.Equal(t, 5, len(all))
	for i, j := range all {
		assert.Equal(t, ids[i], j.ID)
	}
}

func TestUpdateProgress(t *testing.T) {
	r, b := initTest(t)
	j, _ := r.Submit("olia.mp4", 100, "p", "", "")
	r.UpdateProgress(j.ID, status.ExtractingAudio, 10, "Extracting audio", "working")
	got, err := r.Get(j.ID)
	require.Nil(t, err)
	assert.Equal(t, status.ExtractingAudio, got.Status)
	assert.Equal(t, float64(10), got.Progress)
	assert.Equal(t, "Extracting audio", got.CurrentStage)
	assert.Equal(t, "working", got.Message)
	assert.Nil(t, got.CompletedAt)
	assert.Empty(t, got.ErrorMsg)
	require.Equal(t, 2, len(b.calls()))
}

func TestUpdateProgress_Completed(t *testing.T) {
	r, _ := initTest(t)
	j, _ := r.Submit("olia.mp4", 100, "p", "", "")
	r.UpdateProgress(j.ID, status.Completed, 100, "Completed", "done")
	got, _ := r.Get(j.ID)
	assert.Equal(t, status.Completed, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Empty(t, got.ErrorMsg)
}

func TestUpdateProgress_Failed(t *testing.T) {
	r, _ := initTest(t)
	j, _ := r.Submit("olia.mp4", 100, "p", "", "")
	r.UpdateProgress(j.ID, status.Failed, 10, "Failed", "Audio extraction failed")
	got, _ := r.Get(j.ID)
	assert.Equal(t, status.Failed, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, "Audio extraction failed", got.ErrorMsg)
}

func TestUpdateProgress_UnknownID(t *testing.T) {
	r, b := initTest(t)
	assert.NotPanics(t, func() {
		r.UpdateProgress("xxx", status.Failed, 10, "Failed", "msg")
	})
	assert.Equal(t, 0, len(b.calls()))
}

func TestMutations(t *testing.T) {
	r, b := initTest(t)
	j, _ := r.Submit("olia.mp4", 100, "p", "en", "m1")
	r.SetAudioPath(j.ID, "a.wav")
	r.SetRawTranscript(j.ID, "t.txt")
	r.SetDetectedLanguage(j.ID, "zh")
	r.FinishProcessing(j.ID, "f.txt", "m1", false)
	got, _ := r.Get(j.ID)
	assert.Equal(t, "a.wav", got.AudioPath)
	assert.Equal(t, "t.txt", got.TranscriptRawPath)
	assert.Equal(t, "zh", got.DetectedLanguage)
	assert.Equal(t, "f.txt", got.TranscriptPath)
	assert.Equal(t, "m1", got.LLMModelUsed)
	assert.False(t, got.LLMProcessingSkipped)
	assert.Equal(t, 5, len(b.calls()))
}

func TestDequeue_FIFO(t *testing.T) {
	r, _ := initTest(t)
	j1, _ := r.Submit("olia.mp4", 100, "p", "", "")
	j2, _ := r.Submit("olia2.mp4", 100, "p", "", "")
	ctx := test.Ctx(t)
	got, err := r.Dequeue(ctx)
	require.Nil(t, err)
	assert.Equal(t, j1.ID, got)
	got, err = r.Dequeue(ctx)
	require.Nil(t, err)
	assert.Equal(t, j2.ID, got)
	assert.Equal(t, 0, r.QueueDepth())
}

func TestStats(t *testing.T) {
	r, _ := initTest(t)
	j1, _ := r.Submit("olia.mp4", 100, "p", "", "")
	_, _ = r.Submit("olia2.mp4", 100, "p", "", "")
	r.UpdateProgress(j1.ID, status.Completed, 100, "Completed", "")
	st := r.Stats()
	assert.Equal(t, 1, st[status.Queued.String()])
	assert.Equal(t, 1, st[status.Completed.String()])
	assert.Equal(t, 2, st["total"])
}

func TestSubmit_Concurrent(t *testing.T) {
	r, _ := initTest(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Submit("olia.mp4", 100, "p", "", "")
			assert.Nil(t, err)
		}()
	}
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second * 10):
		require.Fail(t, "timeout")
	}
	assert.Equal(t, 20, len(r.ListAll()))
	assert.Equal(t, 20, r.QueueDepth())
}
