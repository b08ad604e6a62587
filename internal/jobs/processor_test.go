package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flyer-service/internal/discount/model"
	"flyer-service/internal/ingest"
)

type fakeIngestor struct {
	failPaths map[string]bool
	panicOn   string
}

func (f *fakeIngestor) Ingest(_ context.Context, path string) (*ingest.Result, error) {
	if f.panicOn != "" && path == f.panicOn {
		panic("ingestor blew up")
	}
	if f.failPaths[path] {
		return nil, errors.New("ocr backend unreachable")
	}
	return &ingest.Result{InputPath: path, CutoutPath: path + ".cutout.png"}, nil
}

type fakeParser struct {
	rows []model.Row
	err  error
}

func (f *fakeParser) ParseText(context.Context, string) ([]model.Row, error) {
	return f.rows, f.err
}

func (f *fakeParser) ParsePath(context.Context, string) ([]model.Row, error) {
	return f.rows, f.err
}

// recorder captures pipeline events in delivery order.
type recorder struct {
	mu        sync.Mutex
	steps     []string
	completes []string
	outcomes  map[string]Outcome
	errs      map[string]error
	done      chan string
}

func newRecorder() *recorder {
	return &recorder{
		outcomes: make(map[string]Outcome),
		errs:     make(map[string]error),
		done:     make(chan string, 16),
	}
}

func (r *recorder) Queued(jobID string) {}

func (r *recorder) Progress(jobID string, p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, p.CurrentStep)
}

func (r *recorder) Complete(jobID string, o Outcome) {
	r.mu.Lock()
	r.completes = append(r.completes, jobID)
	r.outcomes[jobID] = o
	r.mu.Unlock()
	r.done <- jobID
}

func (r *recorder) Error(jobID string, err error) {
	r.mu.Lock()
	r.errs[jobID] = err
	r.mu.Unlock()
	r.done <- jobID
}

func (r *recorder) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.done:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for job events")
		}
	}
}

func job(id string, paths ...string) Job {
	j := Job{ID: id}
	for i, p := range paths {
		j.Images = append(j.Images, ImageTask{ID: fmt.Sprintf("%s-img%d", id, i+1), Path: p})
	}
	return j
}

func TestProcessorIsolatesImageFailures(t *testing.T) {
	rec := newRecorder()
	p := NewProcessor(&fakeIngestor{failPaths: map[string]bool{"b.jpg": true}}, &fakeParser{}, zerolog.Nop())
	p.Subscribe(rec)

	p.Enqueue(job("j1", "a.jpg", "b.jpg", "c.jpg"))
	rec.wait(t, 1)

	require.Equal(t, []string{"j1"}, rec.completes)
	out := rec.outcomes["j1"]
	require.Len(t, out.ProcessedImages, 3)
	assert.Equal(t, ImageDone, out.ProcessedImages[0].Status)
	assert.Equal(t, ImageError, out.ProcessedImages[1].Status)
	assert.Contains(t, out.ProcessedImages[1].Error, "unreachable")
	assert.Equal(t, ImageDone, out.ProcessedImages[2].Status)
	assert.Empty(t, rec.errs)
}

func TestProcessorAttachesDiscountsByPosition(t *testing.T) {
	rows := []model.Row{
		{ID: "row_1", EnglishTitle: "Soy Sauce"},
		{ID: "row_2", EnglishTitle: "Oyster Sauce"},
	}
	rec := newRecorder()
	p := NewProcessor(&fakeIngestor{}, &fakeParser{rows: rows}, zerolog.Nop())
	p.Subscribe(rec)

	j := job("j1", "a.jpg", "b.jpg", "c.jpg")
	j.Discount = &DiscountSource{Type: SourceText, Content: "1、 soy sauce 4.99"}
	p.Enqueue(j)
	rec.wait(t, 1)

	out := rec.outcomes["j1"]
	require.Len(t, out.ProcessedImages, 3)
	require.NotNil(t, out.ProcessedImages[0].Result.Discount)
	assert.Equal(t, "row_1", out.ProcessedImages[0].Result.Discount.ID)
	assert.Equal(t, "row_2", out.ProcessedImages[1].Result.Discount.ID)
	assert.Nil(t, out.ProcessedImages[2].Result.Discount)

	assert.Equal(t, rows, p.LastParsedRows())
}

func TestProcessorProgressOrdering(t *testing.T) {
	rec := newRecorder()
	p := NewProcessor(&fakeIngestor{}, &fakeParser{rows: []model.Row{{ID: "row_1"}}}, zerolog.Nop())
	p.Subscribe(rec)

	j := job("j1", "a.jpg", "b.jpg")
	j.Discount = &DiscountSource{Type: SourceText, Content: "text"}
	p.Enqueue(j)
	rec.wait(t, 1)

	require.Equal(t, []string{
		"Parsing discounts...",
		"Processing image 1/2",
		"Processing image 2/2",
		"Generating labels...",
	}, rec.steps)
}

func TestProcessorParseFailureContinuesWithoutDiscounts(t *testing.T) {
	rec := newRecorder()
	p := NewProcessor(&fakeIngestor{}, &fakeParser{err: errors.New("missing API key")}, zerolog.Nop())
	p.Subscribe(rec)

	j := job("j1", "a.jpg")
	j.Discount = &DiscountSource{Type: SourceText, Content: "text"}
	p.Enqueue(j)
	rec.wait(t, 1)

	out := rec.outcomes["j1"]
	require.Len(t, out.ProcessedImages, 1)
	assert.Equal(t, ImageDone, out.ProcessedImages[0].Status)
	assert.Nil(t, out.ProcessedImages[0].Result.Discount)
	assert.Empty(t, rec.errs)
}

func TestProcessorFIFOAcrossJobs(t *testing.T) {
	rec := newRecorder()
	p := NewProcessor(&fakeIngestor{}, &fakeParser{}, zerolog.Nop())
	p.Subscribe(rec)

	p.Enqueue(job("first", "a.jpg"))
	p.Enqueue(job("second", "b.jpg"))
	p.Enqueue(job("third", "c.jpg"))
	rec.wait(t, 3)

	assert.Equal(t, []string{"first", "second", "third"}, rec.completes)
	assert.Zero(t, p.QueueLength())
	assert.False(t, p.IsJobQueued("second"))
}

func TestProcessorPanicBecomesErrorAndQueueDrains(t *testing.T) {
	rec := newRecorder()
	p := NewProcessor(&fakeIngestor{panicOn: "bad.jpg"}, &fakeParser{}, zerolog.Nop())
	p.Subscribe(rec)

	p.Enqueue(job("broken", "bad.jpg"))
	p.Enqueue(job("healthy", "a.jpg"))
	rec.wait(t, 2)

	require.Contains(t, rec.errs, "broken")
	assert.True(t, strings.Contains(rec.errs["broken"].Error(), "blew up"))
	assert.Equal(t, []string{"healthy"}, rec.completes)
}

func TestStoreTracksLifecycle(t *testing.T) {
	s := NewStore()
	rec := newRecorder()
	p := NewProcessor(&fakeIngestor{}, &fakeParser{}, zerolog.Nop())
	p.Subscribe(s)
	p.Subscribe(rec)

	p.Enqueue(job("j1", "a.jpg"))
	rec.wait(t, 1)

	r, ok := s.Get("j1")
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, r.Status)
	require.NotNil(t, r.Outcome)
	assert.Len(t, r.Outcome.ProcessedImages, 1)

	_, ok = s.Get("nope")
	assert.False(t, ok)
}
