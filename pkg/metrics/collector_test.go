package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/wasawasa-bot/internal/state"
)

func TestSessionCollector_Collect(t *testing.T) {
	ctx := context.Background()
	storage := state.NewMemoryStorage()

	require.NoError(t, storage.Save(ctx, &state.Session{CustomerID: "a", Stage: state.StageSelectingPrice}))
	require.NoError(t, storage.Save(ctx, &state.Session{CustomerID: "b", Stage: state.StageSelectingPrice}))
	require.NoError(t, storage.Save(ctx, &state.Session{CustomerID: "c", Stage: state.StageConfirming}))

	collector := NewSessionCollector(storage, nil, 0)
	require.NoError(t, collector.collect(ctx))

	assert.Equal(t, float64(3), testutil.ToFloat64(activeSessions))
	assert.Equal(t, float64(2), testutil.ToFloat64(sessionsByStage.WithLabelValues("selecting_price")))
	assert.Equal(t, float64(1), testutil.ToFloat64(sessionsByStage.WithLabelValues("confirming")))
	assert.Equal(t, float64(0), testutil.ToFloat64(sessionsByStage.WithLabelValues("greeting")))
}

func TestRecordOrder_UnknownLabel(t *testing.T) {
	before := testutil.ToFloat64(ordersTotal.WithLabelValues("unknown"))
	RecordOrder("")
	assert.Equal(t, before+1, testutil.ToFloat64(ordersTotal.WithLabelValues("unknown")))
}
