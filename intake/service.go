package intake

import (
	"agencysite/models"
	"context"
	"errors"

	"go.uber.org/zap"
)

// Service accepts project briefs: it never trusts client-side validation
// and hands valid briefs to the configured Dispatcher.
type Service struct {
	dispatcher Dispatcher
	log        *zap.Logger
}

// NewService builds a Service around a development or live dispatcher.
func NewService(dispatcher Dispatcher, log *zap.Logger) *Service {
	return &Service{
		dispatcher: dispatcher,
		log:        log.Named("intake"),
	}
}

// Submit normalizes and validates sub, then dispatches it. Validation errors
// wrap ErrMissingFields or ErrInvalidEmail and happen before any email is sent.
func (s *Service) Submit(ctx context.Context, sub models.ProjectBriefSubmission) (Receipt, error) {
	brief := Normalize(sub)

	if err := Validate(brief); err != nil {
		s.log.Info("project brief rejected", zap.Error(err))
		return Receipt{}, err
	}

	receipt, err := s.dispatcher.Dispatch(ctx, brief)
	if err != nil {
		var notifyErr *NotifyError
		if !errors.As(err, &notifyErr) {
			s.log.Error("project brief dispatch failed", zap.Error(err))
		}
		return Receipt{}, err
	}

	return receipt, nil
}
