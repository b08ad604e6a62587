package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"flyer-service/internal/discount/model"
	"flyer-service/internal/ingest"
	"flyer-service/internal/labels"
)

// DiscountParser parses an attached discount source into rows.
type DiscountParser interface {
	ParseText(ctx context.Context, raw string) ([]model.Row, error)
	ParsePath(ctx context.Context, path string) ([]model.Row, error)
}

// Processor drains a FIFO job queue, one job at a time, processing each
// job's images strictly sequentially. Per-image failures are isolated;
// only a failure of the pipeline's own control flow surfaces as a
// job-level error, and the queue keeps draining afterwards.
type Processor struct {
	ingestor ingest.Ingestor
	parser   DiscountParser
	log      zerolog.Logger

	mu         sync.Mutex
	queue      []Job
	processing bool
	currentID  string
	lastRows   []model.Row
	listeners  []Listener
}

func NewProcessor(ingestor ingest.Ingestor, parser DiscountParser, logger zerolog.Logger) *Processor {
	return &Processor{ingestor: ingestor, parser: parser, log: logger}
}

// Subscribe registers a listener. Register before the first Enqueue;
// events are delivered in pipeline order on the worker goroutine.
func (p *Processor) Subscribe(l Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, l)
}

// Enqueue appends a job and starts the drain loop if idle.
func (p *Processor) Enqueue(job Job) {
	p.mu.Lock()
	p.queue = append(p.queue, job)
	start := !p.processing
	if start {
		p.processing = true
	}
	p.mu.Unlock()

	p.emitQueued(job.ID)
	if start {
		go p.drain()
	}
}

// QueueLength reports jobs waiting behind the one being processed.
func (p *Processor) QueueLength() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// IsJobQueued reports whether the job is still waiting in the queue.
func (p *Processor) IsJobQueued(jobID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, j := range p.queue {
		if j.ID == jobID {
			return true
		}
	}
	return false
}

// LastParsedRows returns the most recently parsed discount batch. Held as
// processor state, not process-wide state, so tests and sessions stay
// independent.
func (p *Processor) LastParsedRows() []model.Row {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Row, len(p.lastRows))
	copy(out, p.lastRows)
	return out
}

// SetLastRows replaces the cached batch; the HTTP parse endpoint uses it
// so a later match call can default to the freshest rows.
func (p *Processor) SetLastRows(rows []model.Row) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastRows = rows
}

func (p *Processor) drain() {
	for {
		p.mu.Lock()
		if len(p.queue) == 0 {
			p.processing = false
			p.currentID = ""
			p.mu.Unlock()
			return
		}
		job := p.queue[0]
		p.queue = p.queue[1:]
		p.currentID = job.ID
		p.mu.Unlock()

		p.runJob(job)
	}
}

// runJob shields the drain loop: a panic in the pipeline's own control
// flow becomes a job-level error event and the next job still runs.
func (p *Processor) runJob(job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error().Str("job", job.ID).Interface("panic", rec).Msg("job pipeline panicked")
			p.emitError(job.ID, fmt.Errorf("job %s: %v", job.ID, rec))
		}
	}()
	p.processJob(context.Background(), job)
}

func (p *Processor) processJob(ctx context.Context, job Job) {
	total := len(job.Images)

	// 1. Parse discounts if provided. A parse failure means "no discount
	// rows", never a dead job.
	var rows []model.Row
	if job.Discount != nil && job.Discount.Content != "" {
		p.emitProgress(job.ID, Progress{CurrentStep: "Parsing discounts...", TotalImages: total})
		parsed, err := p.parseSource(ctx, job.Discount)
		if err != nil {
			p.log.Warn().Err(err).Str("job", job.ID).Msg("discount parsing failed, continuing without discounts")
		} else {
			rows = parsed
			p.SetLastRows(rows)
			p.log.Info().Str("job", job.ID).Int("rows", len(rows)).Msg("discounts parsed")
		}
	}

	// 2. Process images sequentially, pairing discounts by position.
	processed := make([]ProcessedImage, 0, total)
	for i, task := range job.Images {
		p.emitProgress(job.ID, Progress{
			CurrentStep:     fmt.Sprintf("Processing image %d/%d", i+1, total),
			ProcessedImages: i,
			TotalImages:     total,
		})

		res, err := p.ingestor.Ingest(ctx, task.Path)
		if err != nil {
			p.log.Error().Err(err).Str("job", job.ID).Str("image", task.ID).Msg("image ingestion failed")
			processed = append(processed, ProcessedImage{
				ID: task.ID, Path: task.Path, Status: ImageError, Error: err.Error(),
			})
			continue
		}
		if i < len(rows) {
			row := rows[i]
			res.Discount = &row
		}
		processed = append(processed, ProcessedImage{
			ID: task.ID, Path: task.Path, Status: ImageDone, Result: res,
		})
	}

	// 3. Generate labels from the images that made it.
	p.emitProgress(job.ID, Progress{
		CurrentStep:     "Generating labels...",
		ProcessedImages: total,
		TotalImages:     total,
	})
	items := make([]labels.Item, 0, len(processed))
	for _, img := range processed {
		if img.Status == ImageDone && img.Result != nil {
			items = append(items, labels.Item{ID: img.ID, Result: img.Result})
		}
	}
	var discountLabels []labels.Label
	if len(items) > 0 {
		discountLabels = labels.Build(items)
	}

	p.log.Info().Str("job", job.ID).
		Int("images", len(processed)).
		Int("labels", len(discountLabels)).
		Msg("job complete")
	p.emitComplete(job.ID, Outcome{ProcessedImages: processed, DiscountLabels: discountLabels})
}

func (p *Processor) parseSource(ctx context.Context, src *DiscountSource) ([]model.Row, error) {
	switch src.Type {
	case SourceXLSX:
		return p.parser.ParsePath(ctx, src.Content)
	default:
		return p.parser.ParseText(ctx, src.Content)
	}
}

func (p *Processor) snapshot() []Listener {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Listener, len(p.listeners))
	copy(out, p.listeners)
	return out
}

func (p *Processor) emitQueued(jobID string) {
	for _, l := range p.snapshot() {
		l.Queued(jobID)
	}
}

func (p *Processor) emitProgress(jobID string, pr Progress) {
	for _, l := range p.snapshot() {
		l.Progress(jobID, pr)
	}
}

func (p *Processor) emitComplete(jobID string, o Outcome) {
	for _, l := range p.snapshot() {
		l.Complete(jobID, o)
	}
}

func (p *Processor) emitError(jobID string, err error) {
	for _, l := range p.snapshot() {
		l.Error(jobID, err)
	}
}
