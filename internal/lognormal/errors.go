package lognormal

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when a probability or median falls outside
// the model's domain. Values are never clamped.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError names the offending argument.
type InvalidInputError struct {
	Arg    string
	Value  float64
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s %s, got %v", ErrInvalidInput.Error(), e.Arg, e.Reason, e.Value)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

func invalidProbability(p float64) error {
	return &InvalidInputError{Arg: "p", Value: p, Reason: "must be in the open interval (0,1)"}
}

func invalidMedian(y float64) error {
	return &InvalidInputError{Arg: "median", Value: y, Reason: "must be a positive finite number"}
}
