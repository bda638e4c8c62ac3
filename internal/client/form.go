package client

import (
	"context"
	"errors"
	"sync"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateResult
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateResult:
		return "result"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

var ErrBusy = errors.New("a submission is already in flight")

// Notifier surfaces transient messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Form holds the presentation state of one submission form. Exactly one state is
// active at a time.
type Form struct {
	mu      sync.Mutex
	state   State
	result  string
	message string
	notify  Notifier
	okText  string
}

func NewForm(n Notifier, successText string) *Form {
	return &Form{notify: n, okText: successText}
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) Result() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Message is the failure shown while the form is in StateFailed.
func (f *Form) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Submit runs one request. A second Submit while loading is refused.
func (f *Form) Submit(ctx context.Context, call func(ctx context.Context) (string, error)) (string, error) {
	f.mu.Lock()
	if f.state == StateLoading {
		f.mu.Unlock()
		return "", ErrBusy
	}
	f.state = StateLoading
	f.result = ""
	f.message = ""
	f.mu.Unlock()

	out, err := call(ctx)

	f.mu.Lock()
	if err != nil {
		f.state = StateFailed
		f.message = FailureMessage(err)
		msg := f.message
		f.mu.Unlock()
		f.notify.Error(msg)
		return "", err
	}
	f.state = StateResult
	f.result = out
	f.mu.Unlock()
	if f.okText != "" {
		f.notify.Success(f.okText)
	}
	return out, nil
}

// RenderFailed drops a result that could not be displayed and returns to idle.
func (f *Form) RenderFailed(msg string) {
	f.mu.Lock()
	if f.state != StateResult {
		f.mu.Unlock()
		return
	}
	f.state = StateIdle
	f.result = ""
	f.mu.Unlock()
	f.notify.Error(msg)
}

// Dismiss closes a failure notification.
func (f *Form) Dismiss() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateFailed {
		f.state = StateIdle
		f.message = ""
	}
}

// FailureMessage renders err as the text shown to the user.
func FailureMessage(err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Message == "" {
			return "Request failed. Please try again."
		}
		return apiErr.Message
	case errors.Is(err, ErrTimeout):
		return "Request timeout. Please try again."
	case errors.Is(err, ErrNoResponse):
		return "No response from server. Please check your connection."
	case errors.Is(err, ErrNoToken):
		return "Authentication token not available"
	case errors.Is(err, ErrEmptyResult):
		return "Request succeeded but no content was received"
	case errors.Is(err, context.Canceled):
		return "Request cancelled."
	}
	return "An unexpected error occurred"
}
