package tickfeed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/ladder-trading/internal/types"
	"github.com/rxtech-lab/ladder-trading/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type CSVSourceTestSuite struct {
	suite.Suite
	dir string
}

func TestCSVSourceSuite(t *testing.T) {
	suite.Run(t, new(CSVSourceTestSuite))
}

func (suite *CSVSourceTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *CSVSourceTestSuite) writeFile(name, content string) string {
	path := filepath.Join(suite.dir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	return path
}

const sampleCSV = `symbol,price,timestamp
SPY,100.5,2024-01-02T09:30:00Z
SPY,100.75,2024-01-02T09:30:01Z
SPY,101,2024-01-02T09:30:02Z
`

func collect(ctx context.Context, source Source) ([]types.PriceTick, error) {
	ticks := make([]types.PriceTick, 0)

	for tick, err := range source.Stream(ctx) {
		if err != nil {
			return ticks, err
		}

		ticks = append(ticks, tick)
	}

	return ticks, nil
}

func (suite *CSVSourceTestSuite) TestStreamReplaysRowsInOrder() {
	path := suite.writeFile("ticks.csv", sampleCSV)
	source := NewCSVSource(path, "")

	ticks, err := collect(context.Background(), source)
	suite.Require().NoError(err)
	suite.Require().Len(ticks, 3)

	suite.Equal("SPY", ticks[0].Symbol)
	suite.InDelta(100.5, ticks[0].Price, 1e-9)
	suite.Equal(time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC), ticks[0].Timestamp)
	suite.InDelta(101, ticks[2].Price, 1e-9)
}

func (suite *CSVSourceTestSuite) TestSymbolOverride() {
	path := suite.writeFile("ticks.csv", sampleCSV)
	source := NewCSVSource(path, "QQQ")

	ticks, err := collect(context.Background(), source)
	suite.Require().NoError(err)

	for _, tick := range ticks {
		suite.Equal("QQQ", tick.Symbol)
	}
}

func (suite *CSVSourceTestSuite) TestCount() {
	path := suite.writeFile("ticks.csv", sampleCSV)
	source := NewCSVSource(path, "")

	count, err := source.Count()
	suite.Require().NoError(err)
	suite.Equal(3, count)
}

func (suite *CSVSourceTestSuite) TestMissingFile() {
	source := NewCSVSource(filepath.Join(suite.dir, "absent.csv"), "")

	_, err := collect(context.Background(), source)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeFeedConnectFailed))
}

func (suite *CSVSourceTestSuite) TestMalformedFile() {
	path := suite.writeFile("bad.csv", "symbol,price,timestamp\nSPY,not-a-number,2024-01-02T09:30:00Z\n")
	source := NewCSVSource(path, "")

	_, err := collect(context.Background(), source)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeFeedParseFailed))
}

func (suite *CSVSourceTestSuite) TestCancelledContextStopsReplay() {
	path := suite.writeFile("ticks.csv", sampleCSV)
	source := NewCSVSource(path, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ticks, err := collect(ctx, source)
	suite.NoError(err)
	suite.Empty(ticks)
}
