// Package extractor recovers structured gold prices from raw page markup.
//
// Several independent strategies scan the same markup. Their candidates are
// validated against a plausibility band, merged in a fixed priority order and
// assembled into a snapshot. Nothing in this package performs I/O or logs.
package extractor

import (
	"errors"
	"fmt"

	"github.com/Houeta/gold-flow/internal/models"
)

var (
	// ErrStrategyParse marks a recoverable parse failure inside a single strategy.
	ErrStrategyParse = errors.New("strategy parse failure")
	// ErrExtractionExhausted is returned when no strategy produced a usable record.
	ErrExtractionExhausted = errors.New("extraction exhausted: no price records found")
)

// Strategy turns markup into zero or more price candidates.
//
// A non-nil error means the strategy failed to parse its input; the pipeline
// drops whatever it returned and continues with the remaining strategies.
type Strategy interface {
	Origin() models.Origin
	Extract(markup string) ([]models.Candidate, error)
}

// StrategyError reports which strategy failed and why.
type StrategyError struct {
	Origin models.Origin
	Err    error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("%s strategy: %v", e.Origin, e.Err)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrStrategyParse for every StrategyError.
func (e *StrategyError) Is(target error) bool {
	return target == ErrStrategyParse
}

// StrategyResult is the output of one strategy run.
type StrategyResult struct {
	Origin     models.Origin
	Candidates []models.Candidate
}

// priority is the fixed merge precedence, highest confidence first.
var priority = []models.Origin{
	models.OriginStructured,
	models.OriginEmbedded,
	models.OriginTable,
	models.OriginText,
}

// rank returns the position of origin in the merge precedence.
// Unknown origins sort after every known one.
func rank(origin models.Origin) int {
	for i, o := range priority {
		if o == origin {
			return i
		}
	}

	return len(priority)
}

// DefaultStrategies returns the four built-in strategies in priority order.
func DefaultStrategies(v Validator) []Strategy {
	return []Strategy{
		NewStructuredData(),
		NewEmbeddedState(),
		NewTableHeuristic(v),
		NewTextScan(v),
	}
}
