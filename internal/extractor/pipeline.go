package extractor

import (
	"fmt"
	"time"

	"github.com/Houeta/gold-flow/internal/models"
	"github.com/sourcegraph/conc/iter"
)

// Pipeline runs every strategy over the same markup and assembles a snapshot.
type Pipeline struct {
	meta       Meta
	validator  Validator
	strategies []Strategy
}

// Result is a pipeline run: the snapshot plus the strategies that failed on the way.
type Result struct {
	Snapshot *models.Snapshot
	Failures []error
}

// NewPipeline creates a pipeline. When no strategies are given the four
// built-in ones are used.
func NewPipeline(sourceID, sourceURL string, v Validator, strategies ...Strategy) *Pipeline {
	if len(strategies) == 0 {
		strategies = DefaultStrategies(v)
	}

	return &Pipeline{
		meta:       Meta{SourceID: sourceID, SourceURL: sourceURL},
		validator:  v,
		strategies: strategies,
	}
}

// Run extracts a snapshot from markup.
//
// When no strategy yields a record the snapshot is still returned, together
// with ErrExtractionExhausted, so the caller can tell "nothing found" apart
// from a legitimate result.
func (p *Pipeline) Run(markup string, capturedAt time.Time) (*Result, error) {
	type outcome struct {
		result StrategyResult
		err    error
	}

	outcomes := iter.Map(p.strategies, func(s *Strategy) outcome {
		res, err := runStrategy(*s, markup)
		return outcome{result: res, err: err}
	})

	var (
		results  []StrategyResult
		failures []error
	)

	for _, o := range outcomes {
		if o.err != nil {
			failures = append(failures, o.err)
			continue
		}
		o.result.Candidates = p.validator.Filter(o.result.Candidates)
		results = append(results, o.result)
	}

	records := Merge(results)

	meta := p.meta
	meta.CapturedAt = capturedAt

	snap := Assemble(meta, records, ExtractBuyback(markup, p.validator), updateTime(results, markup))

	out := &Result{Snapshot: snap, Failures: failures}
	if len(snap.Records) == 0 {
		return out, ErrExtractionExhausted
	}

	return out, nil
}

// runStrategy isolates one strategy: errors and panics become a StrategyError.
func runStrategy(s Strategy, markup string) (res StrategyResult, err error) {
	origin := s.Origin()

	defer func() {
		if r := recover(); r != nil {
			res = StrategyResult{Origin: origin}
			err = &StrategyError{Origin: origin, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	candidates, err := s.Extract(markup)
	if err != nil {
		return StrategyResult{Origin: origin}, &StrategyError{Origin: origin, Err: err}
	}

	return StrategyResult{Origin: origin, Candidates: candidates}, nil
}

// updateTime prefers a label supplied by a strategy, in priority order,
// over the free-text pattern search.
func updateTime(results []StrategyResult, markup string) string {
	best, bestRank := "", len(priority)+1
	for _, res := range results {
		for _, c := range res.Candidates {
			if c.UpdateTimeLabel != "" && rank(res.Origin) < bestRank {
				best, bestRank = c.UpdateTimeLabel, rank(res.Origin)
			}
		}
	}

	if best != "" {
		return best
	}

	return ExtractUpdateTime(markup)
}
