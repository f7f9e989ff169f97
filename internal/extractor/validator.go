package extractor

import "github.com/Houeta/gold-flow/internal/models"

// Default plausibility bands in IDR.
const (
	DefaultPerUnitMin = 2_000_000
	DefaultPerUnitMax = 5_000_000
	DefaultLooseMin   = 100_000
	DefaultLooseMax   = 10_000_000_000
)

// Band is a closed numeric interval.
type Band struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the band, bounds included.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Validator filters candidates by plausibility.
// PerUnit applies to price per gram of weighted candidates,
// Loose applies to the raw price of unweighted ones.
type Validator struct {
	PerUnit Band
	Loose   Band
}

// DefaultValidator returns a validator with the default bands.
func DefaultValidator() Validator {
	return Validator{
		PerUnit: Band{Min: DefaultPerUnitMin, Max: DefaultPerUnitMax},
		Loose:   Band{Min: DefaultLooseMin, Max: DefaultLooseMax},
	}
}

// Accept reports whether the candidate is plausible. Rejection is not an error.
func (v Validator) Accept(c models.Candidate) bool {
	if c.SellPrice < 0 {
		return false
	}

	if c.IsWeighted() {
		return v.PerUnit.Contains(float64(c.SellPrice) / c.Weight)
	}

	return v.Loose.Contains(float64(c.SellPrice))
}

// Filter returns the accepted candidates, preserving order.
func (v Validator) Filter(candidates []models.Candidate) []models.Candidate {
	var accepted []models.Candidate
	for _, c := range candidates {
		if v.Accept(c) {
			accepted = append(accepted, c)
		}
	}

	return accepted
}
