package tickfeed

import (
	"context"
	"iter"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rxtech-lab/ladder-trading/internal/types"
	"github.com/rxtech-lab/ladder-trading/pkg/errors"
)

// csvTickRecord is the on-disk row shape: RFC3339 timestamps, one tick per row.
type csvTickRecord struct {
	Symbol    string    `csv:"symbol"`
	Price     float64   `csv:"price"`
	Timestamp time.Time `csv:"timestamp"`
}

// CSVSource replays price ticks from a CSV file in row order.
type CSVSource struct {
	// FilePath is the CSV file to replay.
	FilePath string

	// Symbol overrides the row symbol when non-empty, for files recorded
	// without one.
	Symbol string
}

// NewCSVSource creates a CSV replay source.
func NewCSVSource(filePath, symbol string) *CSVSource {
	return &CSVSource{
		FilePath: filePath,
		Symbol:   symbol,
	}
}

// Count returns the number of ticks in the file, for replay progress display.
func (s *CSVSource) Count() (int, error) {
	records, err := s.load()
	if err != nil {
		return 0, err
	}

	return len(records), nil
}

// Stream implements Source.
func (s *CSVSource) Stream(ctx context.Context) iter.Seq2[types.PriceTick, error] {
	return func(yield func(types.PriceTick, error) bool) {
		records, err := s.load()
		if err != nil {
			yield(types.PriceTick{}, err)

			return
		}

		for _, record := range records {
			if ctx.Err() != nil {
				return
			}

			symbol := record.Symbol
			if s.Symbol != "" {
				symbol = s.Symbol
			}

			tick := types.PriceTick{
				Symbol:    symbol,
				Price:     record.Price,
				Timestamp: record.Timestamp,
			}

			if !yield(tick, nil) {
				return
			}
		}
	}
}

func (s *CSVSource) load() ([]csvTickRecord, error) {
	file, err := os.Open(s.FilePath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFeedConnectFailed, err, "failed to open tick file %s", s.FilePath)
	}
	defer file.Close()

	var records []csvTickRecord
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFeedParseFailed, err, "failed to parse tick file %s", s.FilePath)
	}

	return records, nil
}
