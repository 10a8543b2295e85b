package teller

import (
	"errors"
	"fmt"
)

// Kind classifies why a payment initiation did not succeed.
type Kind int

const (
	// KindInvalidIntent marks an intent rejected before any I/O (client input).
	KindInvalidIntent Kind = iota + 1
	// KindConfiguration marks merchant or provider misconfiguration.
	KindConfiguration
	// KindUpstreamRejection marks a non-2xx answer from the provider.
	KindUpstreamRejection
	// KindTransport marks network, body or storage failures.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindInvalidIntent:
		return "invalid_intent"
	case KindConfiguration:
		return "configuration_error"
	case KindUpstreamRejection:
		return "upstream_rejection"
	case KindTransport:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Failure is the only error type returned by Bridge.Initiate. Switch on Kind
// to handle every outcome.
type Failure struct {
	Kind    Kind
	Message string
	// HTTPStatus and ProviderBody are set for KindUpstreamRejection.
	HTTPStatus   int
	ProviderBody *Body
	Err          error
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	if f.Err != nil {
		return fmt.Sprintf("teller %s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("teller %s: %s", f.Kind, f.Message)
}

// Unwrap exposes the underlying transport or storage error.
func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

// AsFailure extracts a Failure from err. Errors that are not Failures are
// reported as KindTransport so callers always get a classification.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: KindTransport, Message: "unexpected error", Err: err}
}

func invalidIntent(msg string) *Failure {
	return &Failure{Kind: KindInvalidIntent, Message: msg}
}

func configurationError(msg string) *Failure {
	return &Failure{Kind: KindConfiguration, Message: msg}
}

func transportError(msg string, err error) *Failure {
	return &Failure{Kind: KindTransport, Message: msg, Err: err}
}
