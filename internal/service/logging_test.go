package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"txguard/internal/model"
)

func TestWithLogging_AnnouncesEveryOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := WithLogging(newTestPipeline(&mockBus{}, &mockStore{}), zap.New(core))
	ctx := context.Background()

	_, err := svc.Evaluate(ctx, model.OperationRequest{Kind: model.OpAccessData, Actor: model.Actor{Role: model.RoleUser}})
	require.NoError(t, err)
	_, err = svc.Evaluate(ctx, model.OperationRequest{Kind: model.OpAccessData, Actor: model.Actor{Role: model.RoleAdmin}})
	require.NoError(t, err)
	_, err = svc.Evaluate(ctx, model.OperationRequest{Kind: "bogus"})
	require.Error(t, err)

	completed := logs.FilterMessage("operation completed").All()
	require.Len(t, completed, 2)
	assert.Equal(t, false, completed[0].ContextMap()["accepted"])
	assert.Equal(t, string(model.RejectUnauthorizedAccess), completed[0].ContextMap()["rejection"])
	assert.Equal(t, true, completed[1].ContextMap()["accepted"])

	assert.Equal(t, 1, logs.FilterMessage("operation failed").Len())
}

func TestWithLogging_Audit(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	svc := WithLogging(newTestPipeline(&mockBus{}, &mockStore{}), zap.New(core))

	_, err := svc.Audit(context.Background(), model.AuditRequest{Records: rawRecords(`{"amount": -300}`, `{}`)})
	require.NoError(t, err)

	entries := logs.FilterMessage("audit completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 2, fields["records"])
	assert.EqualValues(t, 1, fields["valid"])
	assert.EqualValues(t, 1, fields["rejected"])
}
