package types

import (
	"math"
	"time"

	"github.com/rxtech-lab/ladder-trading/pkg/errors"
)

// MaxSanePrice bounds accepted tick prices. Ticks beyond it are treated as
// feed corruption and skipped.
const MaxSanePrice = 1e9

// PriceTick is a single asynchronous price observation from the market-data
// collaborator.
type PriceTick struct {
	Symbol    string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Price     float64   `yaml:"price" json:"price" csv:"price"`
	Timestamp time.Time `yaml:"timestamp" json:"timestamp" csv:"timestamp"`
}

// PriceSample is one element of the market context tracker's rolling window.
type PriceSample struct {
	Price     float64   `yaml:"price" json:"price"`
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
}

// Validate reports a data error when the tick price is non-finite, non-positive,
// or outside the sane range.
func (t PriceTick) Validate() error {
	if math.IsNaN(t.Price) || math.IsInf(t.Price, 0) {
		return errors.Newf(errors.ErrCodeInvalidPrice, "non-finite price for %s", t.Symbol)
	}

	if t.Price <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPrice, "non-positive price %f for %s", t.Price, t.Symbol)
	}

	if t.Price > MaxSanePrice {
		return errors.Newf(errors.ErrCodePriceOutOfRange, "price %f for %s exceeds sane range", t.Price, t.Symbol)
	}

	return nil
}
