package forecast

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	// ErrNoCodes is returned when an average is requested over zero station codes.
	ErrNoCodes = errors.New("no station codes to average")

	// ErrMissingStationCode is returned when a direct prediction lacks station_code.
	ErrMissingStationCode = errors.New("missing required feature: " + StationCodeFeature)
)

// ErrModelRejectedInput is wrapped by an InvocationError when the model
// refused the input rather than failing internally.
var ErrModelRejectedInput = errors.New("model rejected input")

// MissingFeaturesError lists every required feature absent from the input,
// in feature order.
type MissingFeaturesError struct {
	Names []string
}

func (e *MissingFeaturesError) Error() string {
	return "missing features: " + strings.Join(e.Names, ", ")
}

// InvalidFeatureError reports a feature whose value is not numeric.
type InvalidFeatureError struct {
	Name  string
	Value any
}

func (e *InvalidFeatureError) Error() string {
	return fmt.Sprintf("feature %q has non-numeric value %v", e.Name, e.Value)
}

// InvocationError wraps a failure from the model or explainer.
type InvocationError struct {
	Op  string
	Err error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("model %s failed: %v", e.Op, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is caused by bad caller input.
func IsValidation(err error) bool {
	var missing *MissingFeaturesError
	var invalid *InvalidFeatureError
	return errors.As(err, &missing) ||
		errors.As(err, &invalid) ||
		errors.Is(err, ErrNoCodes) ||
		errors.Is(err, ErrMissingStationCode)
}
