package generation

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"clientflow/internal/logger"
	"clientflow/internal/repository/db"
	"clientflow/internal/service/llm"
	"clientflow/internal/stream"
)

// DefaultVariantCount is the number of response variants produced per
// request. A refinement pass revises one chosen draft and produces one.
const DefaultVariantCount = 3

var variantTones = []string{"professional", "friendly", "direct"}

// Request is a validated generation request bound to a user.
type Request struct {
	UserID                 string
	OriginalMessage        string
	Context                llm.RequestContext
	RefinementInstructions string
	PreviousResponses      []string
	Model                  string
	StyleProfile           string
}

// VariantCount returns how many variants the request produces.
func VariantCount(req Request) int {
	if req.RefinementInstructions != "" {
		return 1
	}
	return DefaultVariantCount
}

// Pipeline runs one generation end to end: it fans out N concurrent model
// calls, multiplexes their progress into a single ordered event stream,
// mirrors that stream into an accumulator, and settles (persist history,
// commit quota, emit the terminal event) when generation finishes.
type Pipeline struct {
	db       db.Database
	provider llm.Provider
}

// NewPipeline creates a generation pipeline.
func NewPipeline(database db.Database, provider llm.Provider) *Pipeline {
	return &Pipeline{db: database, provider: provider}
}

// Run starts the pipeline and returns the event stream to write to the
// client. The returned channel carries every variant event followed by
// exactly one terminal event (done or error), then closes. Events already
// read from the channel are considered delivered and are never retracted,
// even when persistence fails afterwards.
//
// Cancelling ctx abandons remaining generation best-effort; no history is
// written unless every variant completed.
func (p *Pipeline) Run(ctx context.Context, req Request) <-chan stream.Event {
	n := VariantCount(req)
	out := make(chan stream.Event)
	merged := make(chan stream.Event)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		index := i
		g.Go(func() error {
			return p.runVariant(gctx, req, index, merged)
		})
	}

	genErr := make(chan error, 1)
	go func() {
		genErr <- g.Wait()
		close(merged)
	}()

	go func() {
		defer close(out)

		// The accumulator is fed the exact sequence forwarded to the
		// wire, so what gets persisted is what the client saw.
		acc := stream.NewAccumulator(n)
		for ev := range merged {
			if err := acc.Apply(ev); err != nil {
				logger.WithComponent("generation").WithError(err).Error("Event stream invariant violation")
			}
			emit(ctx, out, ev)
		}

		err := <-genErr
		p.settle(ctx, req, n, acc, err, out)
	}()

	return out
}

// settle runs once after the variant streams end. Stream delivery is
// irrevocable; persistence is best-effort after the fact.
func (p *Pipeline) settle(ctx context.Context, req Request, n int, acc *stream.Accumulator, genErr error, out chan<- stream.Event) {
	log := logger.WithComponent("settlement").WithFields(logrus.Fields{
		"user_id":  req.UserID,
		"variants": n,
	})

	if ctx.Err() != nil {
		log.Info("Client disconnected mid-stream, abandoning settlement")
		return
	}

	if genErr != nil {
		log.WithError(genErr).Error("Generation failed mid-stream")
		emit(ctx, out, stream.ErrorEvent("generation failed"))
		return
	}

	variants, err := acc.Finalize()
	if err != nil {
		log.WithError(err).Error("Generation ended with incomplete variants")
		emit(ctx, out, stream.ErrorEvent("generation failed"))
		return
	}

	model := req.Model
	if model == "" {
		model = p.provider.DefaultModel()
	}

	saved, err := p.db.CreateResponseHistory(&db.ResponseHistory{
		UserID:          req.UserID,
		OriginalMessage: req.OriginalMessage,
		Context:         req.Context,
		Variants:        variants,
		Model:           model,
		AvgConfidence:   stream.MeanConfidence(variants),
	})
	if err != nil {
		// The client already has the full content; log for reconciliation
		// instead of retracting anything.
		log.WithError(err).Error("History write failed after stream delivery")
		emit(ctx, out, stream.ErrorEvent("failed to save generated responses"))
		return
	}

	if err := p.db.IncrementQuotaUsage(req.UserID); err != nil {
		log.WithError(err).WithField("history_id", saved.ID).Error("Quota commit failed after history write")
		emit(ctx, out, stream.ErrorEvent("failed to update usage"))
		return
	}

	log.WithField("history_id", saved.ID).Info("Generation settled")
	emit(ctx, out, stream.DoneEvent(saved.ID))
}

// runVariant streams one variant's model call, emitting its start, content
// fragments and complete onto the merged channel. The channel send is the
// serialization point between variants; per-variant order holds because a
// single goroutine owns each index.
func (p *Pipeline) runVariant(ctx context.Context, req Request, index int, out chan<- stream.Event) error {
	chunks, err := p.provider.StreamDraft(ctx, llm.DraftRequest{
		OriginalMessage:        req.OriginalMessage,
		Context:                req.Context,
		Tone:                   variantTones[index%len(variantTones)],
		RefinementInstructions: req.RefinementInstructions,
		PreviousResponses:      req.PreviousResponses,
		StyleProfile:           req.StyleProfile,
		Model:                  req.Model,
	})
	if err != nil {
		return fmt.Errorf("variant %d: %w", index, err)
	}

	if err := send(ctx, out, stream.StartEvent(index)); err != nil {
		return err
	}

	completed := false
	for chunk := range chunks {
		switch {
		case chunk.Err != nil:
			return fmt.Errorf("variant %d: %w", index, chunk.Err)
		case chunk.Metadata != nil:
			if err := send(ctx, out, stream.CompleteEvent(index, *chunk.Metadata)); err != nil {
				return err
			}
			completed = true
		case chunk.Content != "":
			if err := send(ctx, out, stream.ContentEvent(index, chunk.Content)); err != nil {
				return err
			}
		}
	}

	if !completed {
		return fmt.Errorf("variant %d: stream ended without completion metadata", index)
	}
	return nil
}

func send(ctx context.Context, out chan<- stream.Event, ev stream.Event) error {
	select {
	case out <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// emit forwards an event to the client-bound channel, dropping it if the
// client is gone.
func emit(ctx context.Context, out chan<- stream.Event, ev stream.Event) {
	select {
	case out <- ev:
	case <-ctx.Done():
	}
}
