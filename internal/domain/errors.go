package domain

import "errors"

var (
	// ErrExtractionFailed means both text-extraction backends failed. Fatal for the document.
	ErrExtractionFailed = errors.New("pdf text extraction failed")
	// ErrJudgeUnavailable means the external judge could not be reached or answered with an error.
	ErrJudgeUnavailable = errors.New("judge unavailable")
	// ErrJudgeMalformed means the judge answered but its output could not be used.
	ErrJudgeMalformed = errors.New("judge returned malformed response")

	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrMissingFile         = errors.New("no file provided")
	ErrArchiveFailed       = errors.New("result archival to storage failed")
)
