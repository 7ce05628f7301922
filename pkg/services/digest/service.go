package digest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/site-digest/pkg/delivery"
	"github.com/de-tools/site-digest/pkg/models/domain"
	"github.com/de-tools/site-digest/pkg/store/admins"
)

// ErrNoRecipients means no administrator carries a usable email address, so
// there is nobody to deliver the digest to.
var ErrNoRecipients = errors.New("no admin recipients with a valid email address")

// ReportGenerator produces the digest payload for one generation time.
type ReportGenerator interface {
	Generate(ctx context.Context, now time.Time) (*domain.Report, error)
}

// Service runs one full digest cycle: generate, resolve recipients, deliver.
type Service struct {
	generator ReportGenerator
	admins    admins.Resolver
	sender    delivery.Sender
}

// NewService wires a generation cycle together.
func NewService(generator ReportGenerator, resolver admins.Resolver, sender delivery.Sender) *Service {
	return &Service{
		generator: generator,
		admins:    resolver,
		sender:    sender,
	}
}

// Run executes one cycle. A failed generation produces no delivery attempt;
// the error surfaces to the caller, which owns retry policy.
func (s *Service) Run(ctx context.Context, now time.Time) error {
	logger := zerolog.Ctx(ctx)

	report, err := s.generator.Generate(ctx, now)
	if err != nil {
		return fmt.Errorf("generate digest: %w", err)
	}

	recipients, err := s.admins.AdminEmails(ctx)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		return ErrNoRecipients
	}

	err = s.sender.Send(ctx, delivery.Delivery{
		Recipients: recipients,
		Subject:    report.Title,
		Report:     report,
	})
	if err != nil {
		return fmt.Errorf("deliver digest: %w", err)
	}

	logger.Info().
		Str("period", report.PeriodLabel).
		Int("recipients", len(recipients)).
		Msg("digest delivered")
	return nil
}
