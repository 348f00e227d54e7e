package apperr

import "errors"

// Sentinel errors shared by the ingestion jobs and the inference service.
// Callers wrap them with context and match with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrSchema        = errors.New("schema mismatch")
	ErrEmptyCorpus   = errors.New("no email data found")
	ErrEmptyDataset  = errors.New("dataset produced no records")
	ErrDecode        = errors.New("invalid text encoding")
	ErrModelLoad     = errors.New("failed to load model")
	ErrInference     = errors.New("inference failed")
	ErrInvalidConfig = errors.New("invalid configuration")
)
