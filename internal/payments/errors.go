package payments

import (
	pkgerrors "github.com/angelmondragon/braintree-broker/pkg/errors"
)

// ProcessorFault converts an adapter/transport failure into a CodeProcessor
// error. Errors that are already typed pass through untouched.
func ProcessorFault(err error, op string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeProcessor, err, op+" failed").
		WithDetails(map[string]any{"error": err.Error()})
}

// Rejection reports a processor decline as a client-visible 400.
func Rejection(message, fallback string) error {
	if message == "" {
		message = fallback
	}
	return pkgerrors.New(pkgerrors.CodePaymentRejected, message)
}
