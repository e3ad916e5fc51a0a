package payments

import (
	"context"
	"errors"
)

// TokenService issues client tokens for the browser payment form.
type TokenService struct {
	processor Processor
}

func NewTokenService(processor Processor) (*TokenService, error) {
	if processor == nil {
		return nil, errors.New("processor required")
	}
	return &TokenService{processor: processor}, nil
}

// ClientToken returns the processor's token verbatim.
func (s *TokenService) ClientToken(ctx context.Context) (string, error) {
	token, err := s.processor.GenerateClientToken(ctx)
	if err != nil {
		return "", ProcessorFault(err, "generate client token")
	}
	return token, nil
}
