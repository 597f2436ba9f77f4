package automation

import (
	"context"
	"errors"
)

// ErrorKind is the error taxonomy stored on execution records
type ErrorKind string

const (
	KindSignatureInvalid    ErrorKind = "SignatureInvalid"
	KindMalformedPayload    ErrorKind = "MalformedPayload"
	KindStoreUnavailable    ErrorKind = "StoreUnavailable"
	KindRuleEvaluationError ErrorKind = "RuleEvaluationError"
	KindActionTimeout       ErrorKind = "ActionTimeout"
	KindActionProviderError ErrorKind = "ActionProviderError"
	KindDuplicateSuppressed ErrorKind = "DuplicateSuppressed"
)

var (
	ErrSignatureInvalid    = errors.New("signature invalid")
	ErrMalformedPayload    = errors.New("malformed payload")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrRuleEvaluation      = errors.New("rule evaluation error")
	ErrActionTimeout       = errors.New("action timeout")
	ErrActionProvider      = errors.New("action provider error")
	ErrDuplicateSuppressed = errors.New("duplicate suppressed")

	ErrRuleNotFound = errors.New("rule not found")
	ErrRuleDisabled = errors.New("rule is disabled")
)

// KindOf classifies err into the taxonomy. Unknown errors are provider errors.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSignatureInvalid):
		return KindSignatureInvalid
	case errors.Is(err, ErrMalformedPayload):
		return KindMalformedPayload
	case errors.Is(err, ErrStoreUnavailable):
		return KindStoreUnavailable
	case errors.Is(err, ErrRuleEvaluation):
		return KindRuleEvaluationError
	case errors.Is(err, ErrActionTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindActionTimeout
	case errors.Is(err, ErrDuplicateSuppressed):
		return KindDuplicateSuppressed
	default:
		return KindActionProviderError
	}
}
