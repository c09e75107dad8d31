// Package app contains application services for the fees context.
package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ORDEP81/ticketsight/business/fees/domain"
	oddsDomain "github.com/ORDEP81/ticketsight/business/odds/domain"
	ticketDomain "github.com/ORDEP81/ticketsight/business/ticket/domain"
	"github.com/ORDEP81/ticketsight/internal/apperror"
	"github.com/ORDEP81/ticketsight/internal/logger"
)

// Estimator synthesizes FeeInfo from the published schedule when the ticket
// does not display one.
type Estimator struct {
	enabled bool
	feeType domain.FeeType
	logger  logger.LoggerInterface
}

// NewEstimator creates an Estimator. Limit orders that cross the book pay
// the taker tier, which is what the assisted flow produces, so taker is the
// default.
func NewEstimator(enabled bool, log logger.LoggerInterface) *Estimator {
	return &Estimator{enabled: enabled, feeType: domain.FeeTaker, logger: log}
}

// WithFeeType overrides the fee tier used for estimates.
func (e *Estimator) WithFeeType(ft domain.FeeType) *Estimator {
	e.feeType = ft
	return e
}

// Enabled reports whether fallback estimation is switched on.
func (e *Estimator) Enabled() bool { return e.enabled }

// EstimateFeeInfo computes a schedule-based FeeInfo for the given order.
func (e *Estimator) EstimateFeeInfo(ctx context.Context, price decimal.Decimal, quantity int) (*ticketDomain.FeeInfo, error) {
	if !e.enabled {
		return nil, apperror.New(apperror.CodeInvalidState,
			apperror.WithContext("fallback estimation disabled"))
	}

	est, err := domain.CalculateFeeEstimate(price, quantity, e.feeType)
	if err != nil {
		return nil, err
	}

	e.logger.Debug(ctx, "synthesized fee estimate",
		"price", price.String(), "quantity", quantity,
		"total", est.TotalFee.String(), "perContract", est.PerContractFee.String(),
		"tier", string(est.FeeType))

	return &ticketDomain.FeeInfo{
		TotalFee:       decimal.NullDecimal{Decimal: est.TotalFee, Valid: true},
		PerContractFee: decimal.NullDecimal{Decimal: est.PerContractFee, Valid: true},
		Source:         oddsDomain.FeeSourceEstimated,
		RawText:        fmt.Sprintf("estimated (%s %s)", est.FeeType, est.TotalFee),
	}, nil
}
