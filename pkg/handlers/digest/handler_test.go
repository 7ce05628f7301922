package digest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/site-digest/pkg/models/domain"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, now time.Time) (*domain.Report, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, now time.Time) error {
	args := m.Called(ctx, now)
	return args.Error(0)
}

var sampleReport = &domain.Report{
	PeriodLabel: "February",
	Title:       "Example Forum activity report for February",
	Sections: []domain.ReportSection{
		{TitleKey: "site_report.health"},
	},
}

func TestGetDigest(t *testing.T) {
	t.Run("success with explicit now", func(t *testing.T) {
		gen := new(mockGenerator)
		expectedNow := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
		gen.On("Generate", mock.Anything, expectedNow).Return(sampleReport, nil)

		h := NewHandler(gen, new(mockRunner))
		rec := httptest.NewRecorder()
		h.GetDigest(rec, httptest.NewRequest(http.MethodGet, "/api/v1/digest?now=2026-03-15", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var report domain.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, "February", report.PeriodLabel)
	})

	t.Run("invalid now parameter", func(t *testing.T) {
		h := NewHandler(new(mockGenerator), new(mockRunner))
		rec := httptest.NewRecorder()
		h.GetDigest(rec, httptest.NewRequest(http.MethodGet, "/api/v1/digest?now=March", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("generation failure", func(t *testing.T) {
		gen := new(mockGenerator)
		gen.On("Generate", mock.Anything, mock.Anything).
			Return(nil, errors.New("metric visits unavailable"))

		h := NewHandler(gen, new(mockRunner))
		rec := httptest.NewRecorder()
		h.GetDigest(rec, httptest.NewRequest(http.MethodGet, "/api/v1/digest", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestPreviewDigest(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(sampleReport, nil)

	h := NewHandler(gen, new(mockRunner))
	rec := httptest.NewRecorder()
	h.PreviewDigest(rec, httptest.NewRequest(http.MethodGet, "/api/v1/digest/preview", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Example Forum activity report for February")
	assert.Contains(t, rec.Body.String(), "site_report.health")
}

func TestSendDigest(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		runner := new(mockRunner)
		runner.On("Run", mock.Anything, mock.Anything).Return(nil)

		h := NewHandler(new(mockGenerator), runner)
		rec := httptest.NewRecorder()
		h.SendDigest(rec, httptest.NewRequest(http.MethodPost, "/api/v1/digest/send", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"sent"}`, rec.Body.String())
		runner.AssertExpectations(t)
	})

	t.Run("cycle failure", func(t *testing.T) {
		runner := new(mockRunner)
		runner.On("Run", mock.Anything, mock.Anything).Return(errors.New("ses throttled"))

		h := NewHandler(new(mockGenerator), runner)
		rec := httptest.NewRecorder()
		h.SendDigest(rec, httptest.NewRequest(http.MethodPost, "/api/v1/digest/send", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
