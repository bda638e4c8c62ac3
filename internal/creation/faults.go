package creation

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/suPer8Hu/ai-studio/internal/ai"
	"github.com/suPer8Hu/ai-studio/internal/pdftext"
	"github.com/suPer8Hu/ai-studio/internal/storage"
)

// User-facing messages for business-rule rejections.
const (
	MsgLimitReached    = "Limit reached. Upgrade to continue."
	MsgPremiumOnly     = "This feature is only available for premium subscriptions"
	MsgUnauthenticated = "Not authorized. Please sign in again."
	MsgPromptRequired  = "Prompt is required"
	MsgImageRequired   = "Image file is required"
	MsgImageTooLarge   = "Image size exceeds allowed size (10MB)."
	MsgObjectRequired  = "Please specify the object to remove"
	MsgSingleObject    = "Please enter only one object name"
	MsgResumeRequired  = "Resume file is required"
	MsgResumeNotPDF    = "Only PDF resumes are supported."
	MsgResumeTooLarge  = "Resume size exceeds allowed size (5MB)."
	MsgRetry           = "Something went wrong. Please try again."
)

// Fault is the closed set of upstream and infrastructure failure classes.
type Fault int

const (
	FaultUnknown Fault = iota
	FaultUnauthorized
	FaultPaymentRequired
	FaultRateLimited
	FaultTimeout
	FaultStorageUpload
	FaultInvalidResponse
	FaultUnreadableDocument
)

var faultMessages = map[Fault]string{
	FaultUnauthorized:       "Invalid API key for the AI service.",
	FaultPaymentRequired:    "AI service quota exceeded.",
	FaultRateLimited:        "Too many requests. Please try again later.",
	FaultTimeout:            "Request timeout. Please try again.",
	FaultStorageUpload:      "Image upload failed. Please try again.",
	FaultInvalidResponse:    "The AI service returned an unexpected response. Please try again.",
	FaultUnreadableDocument: "Could not read text from the uploaded PDF.",
}

var statusFaults = map[int]Fault{
	http.StatusUnauthorized:    FaultUnauthorized,
	http.StatusForbidden:       FaultUnauthorized,
	http.StatusPaymentRequired: FaultPaymentRequired,
	http.StatusTooManyRequests: FaultRateLimited,
	http.StatusRequestTimeout:  FaultTimeout,
	http.StatusGatewayTimeout:  FaultTimeout,
}

// Classify maps an error from an upstream call to its fault class.
func Classify(err error) Fault {
	if err == nil {
		return FaultUnknown
	}

	var se *ai.StatusError
	if errors.As(err, &se) {
		return statusFaults[se.StatusCode]
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FaultTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return FaultTimeout
	}

	switch {
	case errors.Is(err, storage.ErrUpload):
		return FaultStorageUpload
	case errors.Is(err, ai.ErrInvalidResponse):
		return FaultInvalidResponse
	case errors.Is(err, pdftext.ErrUnreadable):
		return FaultUnreadableDocument
	}
	return FaultUnknown
}

// UserMessage normalizes err to a user-actionable message. Raw provider text never
// leaks: unknown faults collapse to the operation's generic message.
func UserMessage(err error, generic string) string {
	if msg, ok := faultMessages[Classify(err)]; ok {
		return msg
	}
	if generic == "" {
		return MsgRetry
	}
	return generic
}

// Failure is a business-rule rejection reported to the caller verbatim.
type Failure struct {
	Message string
}

func (f *Failure) Error() string { return f.Message }

func reject(msg string) error { return &Failure{Message: msg} }
