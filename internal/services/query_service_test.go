package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/tuanng17/coinfolio/internal/errors"
)

func TestQueryServiceForwardsAnswer(t *testing.T) {
	source := &stubSource{answer: "BTC dominates your portfolio at 92%."}
	svc := NewQueryService(source, 0, 0, zap.NewNop())

	answer, err := svc.ProcessQuery(context.Background(), "what is my largest holding?")

	require.NoError(t, err)
	assert.Equal(t, "BTC dominates your portfolio at 92%.", answer)
}

func TestQueryServiceRejectsEmptyText(t *testing.T) {
	svc := NewQueryService(&stubSource{}, 0, 0, zap.NewNop())

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.ProcessQuery(context.Background(), text)
		require.Error(t, err)

		var validationErr *apperrors.ErrValidation
		assert.ErrorAs(t, err, &validationErr)
	}
}

func TestQueryServicePropagatesUpstreamError(t *testing.T) {
	source := &stubSource{queryErr: &apperrors.ErrUpstream{Message: "backend unavailable"}}
	svc := NewQueryService(source, 0, 0, zap.NewNop())

	_, err := svc.ProcessQuery(context.Background(), "anything")

	require.Error(t, err)
	assert.Equal(t, "backend unavailable", err.Error())
}

func TestQueryServiceRateLimit(t *testing.T) {
	source := &stubSource{answer: "ok"}
	// 60/min refills one token per second; burst 1 means the second
	// immediate call must be rejected.
	svc := NewQueryService(source, 60, 1, zap.NewNop())

	_, err := svc.ProcessQuery(context.Background(), "first")
	require.NoError(t, err)

	_, err = svc.ProcessQuery(context.Background(), "second")
	require.Error(t, err)

	var upstreamErr *apperrors.ErrUpstream
	require.ErrorAs(t, err, &upstreamErr)
	assert.Contains(t, upstreamErr.Message, "too many queries")
}
