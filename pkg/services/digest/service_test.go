package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/site-digest/pkg/delivery"
	"github.com/de-tools/site-digest/pkg/models/domain"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) AdminEmails(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, d delivery.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

type stubGenerator struct {
	report *domain.Report
	err    error
	calls  int
}

func (s *stubGenerator) Generate(ctx context.Context, now time.Time) (*domain.Report, error) {
	s.calls++
	return s.report, s.err
}

var stubReport = &domain.Report{
	PeriodLabel: "February",
	Title:       "Example Forum activity report for February",
}

func TestServiceRun(t *testing.T) {
	gen := &stubGenerator{report: stubReport}
	resolver := new(mockResolver)
	sender := new(mockSender)

	recipients := []string{"admin@example.com", "ops@example.com"}
	resolver.On("AdminEmails", mock.Anything).Return(recipients, nil)
	sender.On("Send", mock.Anything, delivery.Delivery{
		Recipients: recipients,
		Subject:    stubReport.Title,
		Report:     stubReport,
	}).Return(nil)

	svc := NewService(gen, resolver, sender)
	err := svc.Run(context.Background(), time.Now())

	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestServiceRunNoRecipients(t *testing.T) {
	gen := &stubGenerator{report: stubReport}
	resolver := new(mockResolver)
	sender := new(mockSender)

	resolver.On("AdminEmails", mock.Anything).Return([]string{}, nil)

	svc := NewService(gen, resolver, sender)
	err := svc.Run(context.Background(), time.Now())

	assert.ErrorIs(t, err, ErrNoRecipients)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestServiceRunGenerationFailureSkipsDelivery(t *testing.T) {
	gen := &stubGenerator{err: errors.New("metric visits unavailable")}
	resolver := new(mockResolver)
	sender := new(mockSender)

	svc := NewService(gen, resolver, sender)
	err := svc.Run(context.Background(), time.Now())

	assert.ErrorContains(t, err, "generate digest")
	resolver.AssertNotCalled(t, "AdminEmails", mock.Anything)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestServiceRunSendFailure(t *testing.T) {
	gen := &stubGenerator{report: stubReport}
	resolver := new(mockResolver)
	sender := new(mockSender)

	resolver.On("AdminEmails", mock.Anything).Return([]string{"admin@example.com"}, nil)
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("ses throttled"))

	svc := NewService(gen, resolver, sender)
	err := svc.Run(context.Background(), time.Now())

	assert.ErrorContains(t, err, "deliver digest")
}
