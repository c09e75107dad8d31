// Package domain contains the core odds conversion types and functions.
package domain

import (
	"fmt"
	"math"

	"github.com/ORDEP81/ticketsight/internal/apperror"
)

// EvenOddsTolerance is the band around p=0.5 collapsed to +100. Guards
// against float noise on prices that are exactly fifty cents upstream.
const EvenOddsTolerance = 0.001

// EvenOdds is the American odds value at p=0.5.
const EvenOdds = 100

// ValidateProbability checks that p is a usable implied probability.
func ValidateProbability(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 || p >= 1 {
		return apperror.Validation(apperror.CodeInvalidProbability, fmt.Sprintf("p=%v", p))
	}
	return nil
}

// ValidateAmericanOdds checks the signed-integer odds convention: magnitude
// at least 100, never zero.
func ValidateAmericanOdds(odds int) error {
	if odds >= EvenOdds || odds <= -EvenOdds {
		return nil
	}
	return apperror.Validation(apperror.CodeInvalidOdds, fmt.Sprintf("odds=%d", odds))
}

// ProbabilityToAmericanOdds converts an implied probability to American
// odds. Positive for underdogs (p<0.5), negative for favorites (p>0.5),
// exactly +100 within EvenOddsTolerance of one half.
func ProbabilityToAmericanOdds(p float64) (int, error) {
	if err := ValidateProbability(p); err != nil {
		return 0, err
	}

	if math.Abs(p-0.5) <= EvenOddsTolerance {
		return EvenOdds, nil
	}

	if p < 0.5 {
		return int(math.Round(100 * (1 - p) / p)), nil
	}
	return -int(math.Round(100 * p / (1 - p))), nil
}

// AmericanOddsToProbability converts American odds back to an implied
// probability in (0,1).
func AmericanOddsToProbability(odds int) (float64, error) {
	if odds == 0 {
		return 0, apperror.Validation(apperror.CodeInvalidOdds, "odds=0")
	}

	if odds > 0 {
		return 100 / (float64(odds) + 100), nil
	}
	abs := math.Abs(float64(odds))
	return abs / (abs + 100), nil
}
