package rag

import "github.com/helixrag/ragengine/internal/errs"

func newValidationError(msg string) error {
	return errs.New(errs.KindValidation, msg)
}

func newNotFoundError(msg string) error {
	return errs.New(errs.KindNotFound, msg)
}

func newPipelineNotReadyError(msg string) error {
	return errs.New(errs.KindPipelineNotReady, msg)
}

func newEmbeddingMismatchError(msg string) error {
	return errs.New(errs.KindEmbeddingMismatch, msg)
}

func newConflictError(msg string) error {
	return errs.New(errs.KindConflict, msg)
}
