package types

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/ladder-trading/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type PriceTickTestSuite struct {
	suite.Suite
}

func TestPriceTickSuite(t *testing.T) {
	suite.Run(t, new(PriceTickTestSuite))
}

func (suite *PriceTickTestSuite) TestValidate() {
	tests := []struct {
		name         string
		price        float64
		expectedCode errors.ErrorCode
	}{
		{name: "valid price", price: 100.25, expectedCode: 0},
		{name: "zero price", price: 0, expectedCode: errors.ErrCodeInvalidPrice},
		{name: "negative price", price: -5, expectedCode: errors.ErrCodeInvalidPrice},
		{name: "NaN price", price: math.NaN(), expectedCode: errors.ErrCodeInvalidPrice},
		{name: "positive infinity", price: math.Inf(1), expectedCode: errors.ErrCodeInvalidPrice},
		{name: "negative infinity", price: math.Inf(-1), expectedCode: errors.ErrCodeInvalidPrice},
		{name: "beyond sane range", price: MaxSanePrice * 2, expectedCode: errors.ErrCodePriceOutOfRange},
		{name: "at sane range boundary", price: MaxSanePrice, expectedCode: 0},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			tick := PriceTick{
				Symbol:    "SPY",
				Price:     tt.price,
				Timestamp: time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC),
			}

			err := tick.Validate()
			if tt.expectedCode == 0 {
				suite.NoError(err)
			} else {
				suite.Require().Error(err)
				suite.True(errors.HasCode(err, tt.expectedCode))
				suite.True(errors.IsDataError(err))
			}
		})
	}
}
