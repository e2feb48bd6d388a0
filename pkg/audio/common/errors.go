package common

import "errors"

// AudioError represents a failure in one stage of the analysis pipeline
type AudioError struct {
	Code    string `json:"code"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AudioError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AudioError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the kind sentinel for e's code.
func (e *AudioError) Is(target error) bool {
	switch target {
	case ErrDecode, ErrIO, ErrAnalysis:
		return e.Code == target.(*AudioError).Code
	}
	return false
}

// Error codes
const (
	ErrCodeDecode   = "DECODE_ERROR"
	ErrCodeIO       = "IO_ERROR"
	ErrCodeAnalysis = "ANALYSIS_ERROR"
)

// Kind sentinels for use with errors.Is
var (
	ErrDecode   = &AudioError{Code: ErrCodeDecode, Message: "audio decode failed"}
	ErrIO       = &AudioError{Code: ErrCodeIO, Message: "audio io failed"}
	ErrAnalysis = &AudioError{Code: ErrCodeAnalysis, Message: "audio analysis failed"}
)

// NewAudioError creates a new audio error
func NewAudioError(code, path, message string, cause error) *AudioError {
	return &AudioError{
		Code:    code,
		Path:    path,
		Message: message,
		Cause:   cause,
	}
}

func NewDecodeError(path, message string, cause error) *AudioError {
	return NewAudioError(ErrCodeDecode, path, message, cause)
}

func NewIOError(path, message string, cause error) *AudioError {
	return NewAudioError(ErrCodeIO, path, message, cause)
}

func NewAnalysisError(message string, cause error) *AudioError {
	return NewAudioError(ErrCodeAnalysis, "", message, cause)
}

// ErrorCode returns the code of the first AudioError in err's chain, or "" if none.
func ErrorCode(err error) string {
	var ae *AudioError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
