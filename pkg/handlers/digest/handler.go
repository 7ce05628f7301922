package digest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/site-digest/pkg/delivery"
	"github.com/de-tools/site-digest/pkg/models/domain"
)

// Generator produces the digest payload for one generation time.
type Generator interface {
	Generate(ctx context.Context, now time.Time) (*domain.Report, error)
}

// Runner executes a full generate-and-deliver cycle.
type Runner interface {
	Run(ctx context.Context, now time.Time) error
}

type Handler struct {
	generator Generator
	runner    Runner
}

func NewHandler(generator Generator, runner Runner) *Handler {
	return &Handler{
		generator: generator,
		runner:    runner,
	}
}

// GetDigest returns the assembled report as JSON. An optional now query
// parameter (YYYY-MM-DD) overrides the generation time for previews and
// backfills.
func (h *Handler) GetDigest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	now, ok := h.nowParam(w, r)
	if !ok {
		return
	}

	report, err := h.generator.Generate(ctx, now)
	if err != nil {
		logger.Error().Err(err).Msg("digest generation failed")
		http.Error(w, "digest generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		logger.Error().Err(err).Msg("failed to encode digest report")
	}
}

// PreviewDigest returns the rendered plain-text body the recipients would
// receive.
func (h *Handler) PreviewDigest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	now, ok := h.nowParam(w, r)
	if !ok {
		return
	}

	report, err := h.generator.Generate(ctx, now)
	if err != nil {
		logger.Error().Err(err).Msg("digest generation failed")
		http.Error(w, "digest generation failed", http.StatusInternalServerError)
		return
	}

	body, err := delivery.RenderBody(report)
	if err != nil {
		logger.Error().Err(err).Msg("failed to render digest preview")
		http.Error(w, "failed to render digest preview", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(body)); err != nil {
		logger.Error().Err(err).Msg("failed to write digest preview")
	}
}

// SendDigest triggers one generate-and-deliver cycle.
func (h *Handler) SendDigest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	now, ok := h.nowParam(w, r)
	if !ok {
		return
	}

	if err := h.runner.Run(ctx, now); err != nil {
		logger.Error().Err(err).Msg("digest delivery cycle failed")
		http.Error(w, "digest delivery cycle failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "sent"}); err != nil {
		logger.Error().Err(err).Msg("failed to encode send response")
	}
}

func (h *Handler) nowParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("now")
	if raw == "" {
		return time.Now(), true
	}

	now, err := time.Parse("2006-01-02", raw)
	if err != nil {
		http.Error(w, "invalid now parameter, expected YYYY-MM-DD", http.StatusBadRequest)
		return time.Time{}, false
	}
	return now, true
}
