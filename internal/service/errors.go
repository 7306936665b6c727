package service

import "fmt"

// ErrorKind names the pipeline stage a ProcessingError came from.
type ErrorKind string

const (
	KindPayload  ErrorKind = "payload"
	KindDecode   ErrorKind = "decode"
	KindAnnotate ErrorKind = "annotate"
	KindDetect   ErrorKind = "detect"
	KindPersist  ErrorKind = "persist"
	KindEncode   ErrorKind = "encode"
)

// ProcessingError is returned by FrameProcessor for any failed frame. The
// HTTP layer reports every kind the same way; Kind is kept for logs.
type ProcessingError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}
