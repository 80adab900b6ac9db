// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"
)

// Stage identifies which pipeline phase an error belongs to. The string
// values are part of the API surface: callers dispatch user-facing
// messages on them.
type Stage string

const (
	StageSearch     Stage = "blog_search"
	StageExtraction Stage = "content_extraction"
	StageAnalysis   Stage = "blog_analysis"
	StageSynthesis  Stage = "brief_synthesis"
	StageSave       Stage = "database_save"
)

// Credit gate failures. These surface before any stage runs.
var (
	ErrNoCredits      = errors.New("NO_CREDITS")
	ErrNoSubscription = errors.New("NO_SUBSCRIPTION")
)

// StageError wraps a stage failure with the stage tag and a message
// safe to show the end user.
type StageError struct {
	Stage   Stage
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error { return e.Err }

// stageErr builds a StageError preserving the cause for errors.Is/As.
func stageErr(stage Stage, message string, err error) *StageError {
	return &StageError{Stage: stage, Message: message, Err: err}
}
