package model

import "errors"

// ErrorKind labels the failure mode of a print job. The taxonomy is closed:
// every error crossing the job boundary is classified into one of these.
type ErrorKind string

const (
	ErrorNone        ErrorKind = ""
	ErrorNoDevice    ErrorKind = "NoDeviceFound"
	ErrorDeviceQuery ErrorKind = "DeviceQueryError"
	ErrorLoad        ErrorKind = "LoadFailure"
	ErrorPrint       ErrorKind = "PrintFailure"
	ErrorTimeout     ErrorKind = "Timeout"
)

// Sentinel errors for the taxonomy. Components wrap these with %w so the
// dispatcher can classify with errors.Is.
var (
	ErrNoDeviceFound = errors.New("no output device found")
	ErrDeviceQuery   = errors.New("device enumeration failed")
	ErrLoadFailure   = errors.New("content failed to load into rendering surface")
	ErrPrintFailure  = errors.New("print instruction failed")
	ErrTimeout       = errors.New("print job timed out")
)

// ClassifyError maps an error to its ErrorKind. Unrecognized errors count as
// print failures; the reason string still reaches the caller via Message.
func ClassifyError(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorNone
	case errors.Is(err, ErrNoDeviceFound):
		return ErrorNoDevice
	case errors.Is(err, ErrDeviceQuery):
		return ErrorDeviceQuery
	case errors.Is(err, ErrLoadFailure):
		return ErrorLoad
	case errors.Is(err, ErrTimeout):
		return ErrorTimeout
	default:
		return ErrorPrint
	}
}

// FailedResult builds the JobResult for a classified failure.
func FailedResult(device string, err error) JobResult {
	return JobResult{
		Success:   false,
		Device:    device,
		ErrorKind: ClassifyError(err),
		Message:   err.Error(),
	}
}
