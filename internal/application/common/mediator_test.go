package common_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/test/helpers"
)

type pingQuery struct{ Value string }

type pingHandler struct{ err error }

func (h *pingHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if h.err != nil {
		return nil, h.err
	}
	return "pong:" + request.(*pingQuery).Value, nil
}

func TestMediator_SendDispatchesToRegisteredHandler(t *testing.T) {
	// Arrange
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingQuery](m, &pingHandler{}))

	// Act
	resp, err := m.Send(context.Background(), &pingQuery{Value: "x"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "pong:x", resp)
}

func TestMediator_RejectsDuplicateAndUnknown(t *testing.T) {
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingQuery](m, &pingHandler{}))

	assert.Error(t, common.RegisterHandler[*pingQuery](m, &pingHandler{}))
	_, err := m.Send(context.Background(), struct{}{})
	assert.Error(t, err)
	_, err = m.Send(context.Background(), nil)
	assert.Error(t, err)
}

func TestMediator_MiddlewareRunsInOrder(t *testing.T) {
	// Arrange
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingQuery](m, &pingHandler{}))
	var order []string
	for _, name := range []string{"first", "second"} {
		name := name
		m.Use(func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
			order = append(order, name)
			return next(ctx, request)
		})
	}

	// Act
	_, err := m.Send(context.Background(), &pingQuery{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestLoggingMiddleware_LogsFailures(t *testing.T) {
	// Arrange
	logger := helpers.NewCapturingLogger()
	ctx := common.WithLogger(context.Background(), logger)
	m := common.NewMediator()
	m.Use(common.LoggingMiddleware())
	require.NoError(t, common.RegisterHandler[*pingQuery](m, &pingHandler{err: errors.New("boom")}))

	// Act
	_, err := m.Send(ctx, &pingQuery{})

	// Assert
	require.Error(t, err)
	assert.True(t, logger.HasEntry(common.LevelError, "Request failed"))
}

func TestLoggerFromContext_FallsBackToNoOp(t *testing.T) {
	logger := common.LoggerFromContext(context.Background())
	require.NotNil(t, logger)
	logger.Log(common.LevelInfo, "ignored", nil)
}
