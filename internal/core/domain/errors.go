package domain

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/samirrijal/geodist/internal/pkg/geospatial"
)

// Sentinels matched with errors.Is at the HTTP edge.
var (
	ErrParse   = errors.New("parse error")
	ErrRange   = errors.New("range error")
	ErrCompute = errors.New("computation error")
	ErrMissing = errors.New("missing value")
)

// ParseError is a required field that is missing or not numeric.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if errors.Is(e.Err, ErrMissing) {
		return fmt.Sprintf("%s is required", e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// RangeError is a latitude or longitude outside the domain of its input mode.
type RangeError struct {
	Axis  geospatial.Axis
	Field string
	Value float64
	Min   float64
	Max   float64
	Unit  string
	// MaxInclusive is false for the DMS upper bound (lat < 90, lon < 180).
	MaxInclusive bool
}

func (e *RangeError) Error() string {
	bound := "above upper bound"
	if e.Value < e.Min {
		bound = "below lower bound"
	} else if e.Value == e.Max && !e.MaxInclusive {
		bound = "upper bound is exclusive"
	}
	return fmt.Sprintf("%s: %s must be between %s and %s %s, got %s (%s)",
		e.Field, e.Axis, fmtBound(e.Min), fmtBound(e.Max), e.Unit, fmtBound(e.Value), bound)
}

func (e *RangeError) Is(target error) bool { return target == ErrRange }

// ComputeError wraps an unexpected failure inside the trig pipeline.
type ComputeError struct {
	Err error
}

func (e *ComputeError) Error() string {
	if e.Err == nil {
		return ErrCompute.Error()
	}
	return fmt.Sprintf("%s: %v", ErrCompute, e.Err)
}

func (e *ComputeError) Unwrap() error { return e.Err }

func (e *ComputeError) Is(target error) bool { return target == ErrCompute }

func fmtBound(v float64) string {
	return strconv.FormatFloat(v, 'g', 8, 64)
}
