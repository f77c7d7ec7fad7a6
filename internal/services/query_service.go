package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperrors "github.com/tuanng17/coinfolio/internal/errors"
)

type queryService struct {
	source  DataSource
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewQueryService creates the natural-language query proxy. Queries are
// rate-limited before they reach the LLM backend; ratePerMinute <= 0
// disables the limit.
func NewQueryService(source DataSource, ratePerMinute, burst int, logger *zap.Logger) QueryService {
	var limiter *rate.Limiter
	if ratePerMinute > 0 {
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(ratePerMinute)/60.0), burst)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &queryService{source: source, limiter: limiter, logger: logger}
}

func (s *queryService) ProcessQuery(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &apperrors.ErrValidation{Field: "text", Message: "query text is required"}
	}

	if s.limiter != nil && !s.limiter.Allow() {
		s.logger.Warn("query rate limit exceeded")
		return "", &apperrors.ErrUpstream{Message: "too many queries, please wait a moment"}
	}

	answer, err := s.source.Query(ctx, text)
	if err != nil {
		s.logger.Error("query failed", zap.Error(err))
		return "", err
	}
	return answer, nil
}
