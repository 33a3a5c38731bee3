// Package pipeline sequences one Extract → Transform → Load pass over the
// configured units. Execution is single-threaded and non-reentrant: one run,
// one pass, no partial resume. Per-unit failures are counted and skipped;
// only a rejected credential or a load failure ends a run early.
package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"Stratus/internal/normalize"
	"Stratus/internal/source"
)

type State string

const (
	StateIdle         State = "idle"
	StateExtracting   State = "extracting"
	StateTransforming State = "transforming"
	StateLoading      State = "loading"
	StateValidating   State = "validating"
	StateDone         State = "done"
)

// Summary is the run report. Counts are units (extract) and documents
// (transform/load); Success is false exactly when the credential was
// rejected or the load stage failed.
type Summary struct {
	Requested   int           `json:"requested"`
	Extracted   int           `json:"extracted"`
	Transformed int           `json:"transformed"`
	Loaded      int           `json:"loaded"`
	Duration    time.Duration `json:"duration"`
	Success     bool          `json:"success"`
}

// Loader persists a normalized document sequence in fixed-size batches.
type Loader interface {
	InsertBatches(ctx context.Context, docs []any, batchSize int) (int, error)
}

// Counter reports how many documents the target collection holds. Used only
// by the best-effort validation stage.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type Pipeline struct {
	src       source.Client
	norm      normalize.Normalizer
	loader    Loader
	counter   Counter // nil disables the validation stage
	batchSize int
	now       func() time.Time
	state     State
}

type Option func(*Pipeline)

// WithCounter enables the post-load document count check.
func WithCounter(c Counter) Option {
	return func(p *Pipeline) { p.counter = c }
}

// WithClock fixes the ingestion-timestamp source. Tests use it to freeze
// the clock; the default is wall-clock UTC.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(src source.Client, norm normalize.Normalizer, loader Loader, batchSize int, opts ...Option) *Pipeline {
	p := &Pipeline{
		src:       src,
		norm:      norm,
		loader:    loader,
		batchSize: batchSize,
		now:       func() time.Time { return time.Now().UTC() },
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) State() State { return p.state }

func (p *Pipeline) setState(s State) {
	p.state = s
	log.Printf(`{"msg":"pipeline-state","state":%q}`, s)
}

// Run executes one full pass over units and always returns a summary, even
// for aborted runs.
func (p *Pipeline) Run(ctx context.Context, units []string) Summary {
	start := time.Now()
	sum := Summary{Requested: len(units)}
	unauthorized := false
	loadFailed := false

	// Extract
	p.setState(StateExtracting)
	var payloads []normalize.Payload
	for _, unit := range units {
		got, err := p.src.Fetch(ctx, unit)
		if err != nil {
			switch {
			case errors.Is(err, source.ErrUnauthorized):
				log.Printf(`{"msg":"extract-aborted","source":%q,"unit":%q,"err":%q}`, p.src.Name(), unit, err.Error())
				unauthorized = true
			case errors.Is(err, source.ErrNotFound):
				log.Printf(`{"msg":"extract-skip","unit":%q,"reason":"not found"}`, unit)
			case errors.Is(err, source.ErrRateLimited):
				log.Printf(`{"msg":"extract-skip","unit":%q,"reason":"rate limited","err":%q}`, unit, err.Error())
			case errors.Is(err, source.ErrMalformed):
				log.Printf(`{"msg":"extract-skip","unit":%q,"reason":"malformed response","err":%q}`, unit, err.Error())
			default:
				log.Printf(`{"msg":"extract-skip","unit":%q,"reason":"network failure","err":%q}`, unit, err.Error())
			}
			if unauthorized {
				break
			}
			continue
		}
		payloads = append(payloads, got...)
		sum.Extracted++
	}
	log.Printf(`{"msg":"extract-done","units":%d,"payloads":%d}`, sum.Extracted, len(payloads))

	if !unauthorized {
		// Transform
		p.setState(StateTransforming)
		ingestedAt := p.now()
		docs := make([]any, 0, len(payloads))
		for _, pl := range payloads {
			doc, err := p.norm.Normalize(pl, ingestedAt)
			if err != nil {
				log.Printf(`{"msg":"transform-skip","err":%q}`, err.Error())
				continue
			}
			docs = append(docs, doc)
		}
		sum.Transformed = len(docs)
		log.Printf(`{"msg":"transform-done","in":%d,"out":%d}`, len(payloads), sum.Transformed)

		// Load
		p.setState(StateLoading)
		if len(docs) > 0 {
			n, err := p.loader.InsertBatches(ctx, docs, p.batchSize)
			sum.Loaded = n
			if err != nil {
				loadFailed = true
				log.Printf(`{"msg":"load-failed","loaded":%d,"err":%q}`, n, err.Error())
			}
		} else {
			log.Printf(`{"msg":"load-skip","reason":"nothing to load"}`)
		}

		// Validate: count-only sanity check, never flips the success flag.
		if p.counter != nil && !loadFailed {
			p.setState(StateValidating)
			if total, err := p.counter.Count(ctx); err != nil {
				log.Printf(`{"msg":"validate-failed","err":%q}`, err.Error())
			} else {
				log.Printf(`{"msg":"validate-done","stored_total":%d}`, total)
			}
		}
	}

	p.setState(StateDone)
	sum.Duration = time.Since(start)
	sum.Success = !unauthorized && !loadFailed
	log.Printf(`{"msg":"pipeline-done","requested":%d,"extracted":%d,"transformed":%d,"loaded":%d,"duration":%q,"success":%t}`,
		sum.Requested, sum.Extracted, sum.Transformed, sum.Loaded, sum.Duration, sum.Success)
	return sum
}
