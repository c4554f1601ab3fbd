package cards

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/richard-senior/cardstats/pkg/transport"
)

// FailureKind classifies why a single match could not be reconstructed.
// A retry policy would target FailureNetwork, the others need a parser change.
type FailureKind string

const (
	FailureNetwork       FailureKind = "network"
	FailureMissingMarker FailureKind = "missing_marker"
	FailureMalformed     FailureKind = "malformed"
	FailureUnknown       FailureKind = "unknown"
)

// FailureKinds lists every kind in report order
var FailureKinds = []FailureKind{FailureNetwork, FailureMissingMarker, FailureMalformed, FailureUnknown}

// ReconstructError is the row level failure swallowed by the merger
type ReconstructError struct {
	Date string
	Kind FailureKind
	Err  error
}

func (e *ReconstructError) Error() string {
	return fmt.Sprintf("match %s: %s: %v", e.Date, e.Kind, e.Err)
}

func (e *ReconstructError) Unwrap() error {
	return e.Err
}

func missingMarker(format string, args ...any) error {
	return &ReconstructError{Kind: FailureMissingMarker, Err: fmt.Errorf(format, args...)}
}

func malformed(format string, args ...any) error {
	return &ReconstructError{Kind: FailureMalformed, Err: fmt.Errorf(format, args...)}
}

// Classify works out the FailureKind of any error returned while reconstructing a match
func Classify(err error) FailureKind {
	if err == nil {
		return ""
	}
	var re *ReconstructError
	if errors.As(err, &re) && re.Kind != "" {
		return re.Kind
	}
	var se *transport.StatusError
	if errors.As(err, &se) {
		return FailureNetwork
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return FailureNetwork
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureNetwork
	}
	return FailureUnknown
}

// withDate stamps the match date onto err, keeping its kind
func withDate(date string, err error) *ReconstructError {
	var re *ReconstructError
	if errors.As(err, &re) {
		return &ReconstructError{Date: date, Kind: Classify(err), Err: re.Err}
	}
	return &ReconstructError{Date: date, Kind: Classify(err), Err: err}
}
