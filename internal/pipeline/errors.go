package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAllTickersFailed is returned when no ticker produced data.
var ErrAllTickersFailed = errors.New("all tickers failed")

// Stage names a step of the run for error classification.
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageDerive   Stage = "derive"
	StageAssemble Stage = "assemble"
	StageEarnings Stage = "earnings"
	StageWrite    Stage = "write"
)

// StageError attributes a run failure to the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf returns the stage of err, or "" when err carries none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// OnError is the per-ticker fetch failure policy.
type OnError string

const (
	// OnErrorAbort fails the whole run on the first fetch failure.
	OnErrorAbort OnError = "abort"
	// OnErrorSkip drops failed tickers and continues with the rest.
	OnErrorSkip OnError = "skip"
)

// ParseOnError validates a policy name. Empty means abort.
func ParseOnError(s string) (OnError, error) {
	switch p := OnError(strings.ToLower(strings.TrimSpace(s))); p {
	case OnErrorAbort, OnErrorSkip:
		return p, nil
	case "":
		return OnErrorAbort, nil
	default:
		return "", fmt.Errorf("unknown fetch policy %q", s)
	}
}
