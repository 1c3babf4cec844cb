package client

import "errors"

var (
	// ErrMalformedURL is a configuration error: the target URL cannot be used.
	ErrMalformedURL = errors.New("malformed url")

	// ErrNetwork covers connection-level failures: refused, DNS, timeouts,
	// a stream cut mid-request.
	ErrNetwork = errors.New("network error")

	// ErrInvalidServer means the server answered 200 but the payload was not
	// what a study server sends.
	ErrInvalidServer = errors.New("invalid server response")

	// ErrUploadAborted is returned when a file upload is cut short because the
	// batch deadline passed.
	ErrUploadAborted = errors.New("upload aborted")

	// ErrBatchDeadline stops a batch whose time ceiling was reached.
	ErrBatchDeadline = errors.New("upload batch deadline exceeded")

	// ErrLocalStore means the device could not read or write its own state,
	// so nothing about the server can be concluded.
	ErrLocalStore = errors.New("local storage error")

	// ErrEarlyResponse is returned by Connection.Write when the server has
	// already answered. StatusCode reports that answer.
	ErrEarlyResponse = errors.New("server responded before the body was sent")
)

// Numeric results reported to the user in place of an HTTP status.
const (
	CodeMalformedURL  = 0
	CodeNetworkError  = 502
	CodeInvalidServer = 404
	CodeUploadAborted = -1
	CodeLocalStore    = -2
)

// ResponseCode folds an operation's error and HTTP status into the single
// code shown to the participant. A nil error yields status unchanged.
func ResponseCode(err error, status int) int {
	switch {
	case err == nil:
		return status
	case errors.Is(err, ErrUploadAborted), errors.Is(err, ErrBatchDeadline):
		return CodeUploadAborted
	case errors.Is(err, ErrLocalStore):
		return CodeLocalStore
	case errors.Is(err, ErrMalformedURL):
		return CodeMalformedURL
	case errors.Is(err, ErrInvalidServer):
		return CodeInvalidServer
	default:
		return CodeNetworkError
	}
}
