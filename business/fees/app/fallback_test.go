package app

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	oddsDomain "github.com/ORDEP81/ticketsight/business/odds/domain"
	ticketDomain "github.com/ORDEP81/ticketsight/business/ticket/domain"
	"github.com/ORDEP81/ticketsight/internal/apperror"
	"github.com/ORDEP81/ticketsight/internal/logger"
)

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func testLogger() *logger.Logger {
	return logger.New(io.Discard, logger.LevelDebug, "test", nil)
}

func TestEstimator_Disabled(t *testing.T) {
	e := NewEstimator(false, testLogger())
	_, err := e.EstimateFeeInfo(context.Background(), decimal.RequireFromString("0.50"), 10)
	if err == nil {
		t.Fatal("expected error when estimation is disabled")
	}
	if apperror.GetCode(err) != apperror.CodeInvalidState {
		t.Errorf("expected INVALID_STATE, got %s", apperror.GetCode(err))
	}
}

func TestEstimator_TakerSchedule(t *testing.T) {
	e := NewEstimator(true, testLogger())
	fee, err := e.EstimateFeeInfo(context.Background(), decimal.RequireFromString("0.50"), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fee.Source != oddsDomain.FeeSourceEstimated {
		t.Errorf("source = %s, want estimated", fee.Source)
	}
	if !fee.TotalFee.Decimal.Equal(decimal.RequireFromString("0.18")) {
		t.Errorf("total = %s, want 0.18", fee.TotalFee.Decimal)
	}
	if !fee.PerContractFee.Decimal.Equal(decimal.RequireFromString("0.018")) {
		t.Errorf("per-contract = %s, want 0.018", fee.PerContractFee.Decimal)
	}
}

func TestFallbackDetector_EstimatedSource(t *testing.T) {
	d := NewFallbackDetector(DefaultWeights())
	fee := &ticketDomain.FeeInfo{
		PerContractFee: nullDec("0.018"),
		Source:         oddsDomain.FeeSourceEstimated,
	}

	report := d.Detect(fee, DetectionContext{})
	if !report.IsUsingFallback {
		t.Error("estimated source must classify as fallback")
	}
	if math.Abs(report.Confidence-0.95) > 1e-9 {
		t.Errorf("confidence = %v, want 0.95", report.Confidence)
	}
}

func TestFallbackDetector_TicketSourceClean(t *testing.T) {
	d := NewFallbackDetector(DefaultWeights())
	fee := &ticketDomain.FeeInfo{
		PerContractFee: nullDec("0.018"),
		Source:         oddsDomain.FeeSourceTicket,
		RawText:        "Fee per contract: $0.018",
	}

	report := d.Detect(fee, DetectionContext{})
	if report.IsUsingFallback {
		t.Errorf("clean ticket fee misclassified: %+v", report)
	}
	if report.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", report.Confidence)
	}
}

func TestFallbackDetector_HeuristicAccumulation(t *testing.T) {
	d := NewFallbackDetector(DefaultWeights())
	fee := &ticketDomain.FeeInfo{
		PerContractFee: nullDec("0.02"), // round value: +0.2
		Source:         oddsDomain.FeeSourceTicket,
	}
	dctx := DetectionContext{
		UsedDefaultQuantity: true, // +0.15
		FormulaComputed:     true, // +0.25
	}

	report := d.Detect(fee, dctx)
	if math.Abs(report.Confidence-0.6) > 1e-9 {
		t.Errorf("confidence = %v, want 0.6", report.Confidence)
	}
	if !report.IsUsingFallback {
		t.Error("cumulative confidence 0.6 should cross the 0.5 threshold")
	}
	if len(report.Reasons) != 3 {
		t.Errorf("expected 3 reasons, got %v", report.Reasons)
	}
}

func TestFallbackDetector_TextPatternFloor(t *testing.T) {
	d := NewFallbackDetector(DefaultWeights())
	fee := &ticketDomain.FeeInfo{
		PerContractFee: nullDec("0.0147"),
		Source:         oddsDomain.FeeSourceTicket,
		RawText:        "fee could not parse, using default",
	}

	report := d.Detect(fee, DetectionContext{})
	if math.Abs(report.Confidence-0.4) > 1e-9 {
		t.Errorf("confidence = %v, want floor 0.4", report.Confidence)
	}
	if report.IsUsingFallback {
		t.Error("0.4 should sit below the 0.5 threshold")
	}
}

func TestFallbackDetector_NilFee(t *testing.T) {
	d := NewFallbackDetector(DefaultWeights())
	report := d.Detect(nil, DetectionContext{})
	if report.IsUsingFallback || report.Confidence != 0 {
		t.Errorf("nil fee should score zero: %+v", report)
	}
}
