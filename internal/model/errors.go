package model

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Stage names the step of the resolution that failed.
type Stage string

const (
	StageNormalize Stage = "normalize"
	StageGeocode   Stage = "geocode"
	StageGridPoint Stage = "gridpoint"
	StageForecast  Stage = "forecast"
	StageCache     Stage = "cache"
)

// Sentinel errors, one per ErrorKind. Match with errors.Is.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("location not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrCacheUnavailable    = errors.New("cache unavailable")
)

type ErrorKind int

const (
	KindInvalidInput ErrorKind = iota + 1
	KindNotFound
	KindUpstreamUnavailable
	KindCacheUnavailable
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindNotFound:
		return ErrNotFound
	case KindUpstreamUnavailable:
		return ErrUpstreamUnavailable
	case KindCacheUnavailable:
		return ErrCacheUnavailable
	}
	return nil
}

// ResolutionError is returned by every stage of the forecast resolution.
// Status is the upstream HTTP status, or 0 when no response was received.
type ResolutionError struct {
	Kind   ErrorKind
	Stage  Stage
	Status int
	Err    error
}

func (e *ResolutionError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Stage != "" {
		msg = string(e.Stage) + ": " + msg
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *ResolutionError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Timeout reports whether the stage gave up because its deadline passed.
func (e *ResolutionError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

func NewInvalidInput(stage Stage, reason string) *ResolutionError {
	return &ResolutionError{Kind: KindInvalidInput, Stage: stage, Err: errors.New(reason)}
}

func NewNotFound(stage Stage) *ResolutionError {
	return &ResolutionError{Kind: KindNotFound, Stage: stage}
}

func NewUpstreamUnavailable(stage Stage, status int, err error) *ResolutionError {
	return &ResolutionError{Kind: KindUpstreamUnavailable, Stage: stage, Status: status, Err: err}
}

func NewCacheUnavailable(err error) *ResolutionError {
	return &ResolutionError{Kind: KindCacheUnavailable, Stage: StageCache, Err: err}
}

// StageOf returns the stage carried by err, or "" if err is not a ResolutionError.
func StageOf(err error) Stage {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Stage
	}
	return ""
}
