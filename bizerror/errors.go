package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	// conflict class: surfaced, explicitly retryable by the caller
	ErrAlreadyClaimed         = errors.New("subtask already claimed")
	ErrNothingClaimed         = errors.New("no subtask claimed for this task")
	ErrWorkerLimitReached     = errors.New("task worker limit reached")
	ErrConcurrentModification = errors.New("concurrent modification")

	// invalid state class: surfaced, not retryable without correcting intent
	ErrInvalidState = errors.New("invalid state")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}
