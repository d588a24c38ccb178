package orderitem

import "fmt"

// StockThreshold names how a requested line quantity is compared against the
// product's available stock before a reconciliation proceeds.
type StockThreshold int

const (
	// ThresholdInclusive admits requests up to and including the full stock;
	// a line may drain a product to zero.
	ThresholdInclusive StockThreshold = iota
	// ThresholdExclusive requires stock strictly above the requested
	// quantity; the last unit is never sold through this path.
	ThresholdExclusive
)

// Allows reports whether the requested quantity passes the threshold.
func (t StockThreshold) Allows(stock, requested int) bool {
	switch t {
	case ThresholdExclusive:
		return stock > requested
	default:
		return requested <= stock
	}
}

func (t StockThreshold) String() string {
	switch t {
	case ThresholdExclusive:
		return "exclusive"
	default:
		return "inclusive"
	}
}

// Policies fixes the threshold used per engine operation. The defaults keep
// the historical behavior: creates may drain stock to zero, updates keep a
// strict margin.
type Policies struct {
	Create StockThreshold
	Update StockThreshold
}

// DefaultPolicies returns the per-operation thresholds used in production.
func DefaultPolicies() Policies {
	return Policies{
		Create: ThresholdInclusive,
		Update: ThresholdExclusive,
	}
}

// Validate rejects unknown threshold values.
func (p Policies) Validate() error {
	for _, t := range []StockThreshold{p.Create, p.Update} {
		if t != ThresholdInclusive && t != ThresholdExclusive {
			return fmt.Errorf("unknown stock threshold %d", t)
		}
	}
	return nil
}
