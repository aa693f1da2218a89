// Package evaluate runs dataset rows through a reviewer in parallel,
// persisting each result as it completes so interrupted runs can resume
// without re-reviewing finished variants.
package evaluate

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/shinsa/internal/dataset"
	"github.com/hyperjump/shinsa/internal/models"
	"github.com/hyperjump/shinsa/internal/review"
	"github.com/hyperjump/shinsa/internal/storage"
	"go.uber.org/zap"
)

// Item is one evaluable dataset row, independent of which dataset shape
// it came from.
type Item struct {
	VariantID      string
	OriginalID     string
	VariantType    string
	AttackType     string
	AttackPosition string
	SectionFound   *bool
	Text           string
}

// ItemsFromVariants converts variant records to evaluable items.
func ItemsFromVariants(records []*models.VariantRecord) []*Item {
	items := make([]*Item, len(records))
	for i, r := range records {
		items[i] = &Item{
			VariantID:   r.ID,
			OriginalID:  r.OriginalID,
			VariantType: r.VariantType,
			Text:        r.Text,
		}
	}
	return items
}

// ItemsFromAttacks converts attack records to evaluable items.
func ItemsFromAttacks(records []*models.AttackRecord) []*Item {
	items := make([]*Item, len(records))
	for i, r := range records {
		items[i] = &Item{
			VariantID:      r.ID,
			OriginalID:     r.OriginalID,
			VariantType:    r.VariantType,
			AttackType:     r.AttackType,
			AttackPosition: r.AttackPosition,
			SectionFound:   r.SectionFound,
			Text:           r.Text,
		}
	}
	return items
}

// Summary reports what a Run did.
type Summary struct {
	Evaluated int
	Skipped   int
	Failed    int
}

// Evaluator reviews items with a bounded worker pool. Reviews run in
// parallel; persistence is serialized by the store.
type Evaluator struct {
	reviewer review.Reviewer
	store    storage.ResultStore
	workers  int
	logger   *zap.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithWorkers sets the number of concurrent review workers.
func WithWorkers(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets a logger for progress and failure events.
func WithLogger(l *zap.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// NewEvaluator returns an evaluator writing results to store.
func NewEvaluator(reviewer review.Reviewer, store storage.ResultStore, opts ...Option) *Evaluator {
	e := &Evaluator{reviewer: reviewer, store: store, workers: 4, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run evaluates items, skipping any already present in the store. Review
// failures are recorded (with the error) rather than aborting the run;
// only context cancellation and storage failures stop it.
func (e *Evaluator) Run(ctx context.Context, items []*Item) (*Summary, error) {
	var pending []*Item
	skipped := 0
	for _, item := range items {
		done, err := e.store.HasResult(ctx, item.VariantID)
		if err != nil {
			return nil, err
		}
		if done {
			skipped++
			continue
		}
		pending = append(pending, item)
	}
	if skipped > 0 {
		e.logger.Info("resuming: skipping already-evaluated variants",
			zap.Int("skipped", skipped), zap.Int("pending", len(pending)))
	}

	summary := &Summary{Skipped: skipped}
	results := make(chan *models.EvaluationResult)

	g, gctx := errgroup.WithContext(ctx)
	workers, wctx := errgroup.WithContext(gctx)
	workers.SetLimit(e.workers)

	// Single consumer persists results; workers only compute.
	g.Go(func() error {
		for res := range results {
			if err := e.store.SaveResult(gctx, res); err != nil {
				return err
			}
			if res.Error != "" {
				summary.Failed++
			}
			summary.Evaluated++
			if summary.Evaluated%20 == 0 {
				e.logger.Info("evaluation progress",
					zap.Int("evaluated", summary.Evaluated),
					zap.Int("total", len(pending)))
			}
		}
		return nil
	})

	g.Go(func() error {
		defer close(results)
		for _, item := range pending {
			item := item
			workers.Go(func() error {
				res := e.evaluateOne(wctx, item)
				select {
				case results <- res:
				case <-wctx.Done():
					return wctx.Err()
				}
				return nil
			})
		}
		return workers.Wait()
	})

	if err := g.Wait(); err != nil {
		return summary, err
	}
	return summary, nil
}

// evaluateOne reviews a single item; failures become recorded results.
func (e *Evaluator) evaluateOne(ctx context.Context, item *Item) *models.EvaluationResult {
	res := &models.EvaluationResult{
		VariantID:      item.VariantID,
		OriginalID:     item.OriginalID,
		VariantType:    item.VariantType,
		AttackType:     item.AttackType,
		AttackPosition: item.AttackPosition,
		SectionFound:   item.SectionFound,
		EvaluatedAt:    time.Now(),
	}
	rev, err := e.reviewer.Review(ctx, item.Text)
	if err != nil {
		e.logger.Warn("review failed",
			zap.String("variant_id", item.VariantID), zap.Error(err))
		res.Error = err.Error()
		return res
	}
	res.Review = rev
	return res
}

// Export writes every stored result to a JSONL file.
func (e *Evaluator) Export(ctx context.Context, path string) (int, error) {
	results, err := e.store.ListResults(ctx)
	if err != nil {
		return 0, err
	}
	return dataset.WriteAll(path, results)
}
