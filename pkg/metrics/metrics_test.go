package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordStartIncrementsCounterAndSetsActive(t *testing.T) {
	before := testutil.ToFloat64(SessionsStartedTotal)

	RecordStart()

	require.Equal(t, before+1, testutil.ToFloat64(SessionsStartedTotal))
	require.Equal(t, float64(1), testutil.ToFloat64(SessionActive))
}

func TestRecordStopClearsActiveAndLabelsOutcome(t *testing.T) {
	RecordStart()

	before := testutil.ToFloat64(SessionsStoppedTotal.WithLabelValues("ok"))
	RecordStop(1.5, false)
	require.Equal(t, before+1, testutil.ToFloat64(SessionsStoppedTotal.WithLabelValues("ok")))
	require.Equal(t, float64(0), testutil.ToFloat64(SessionActive))

	beforeErr := testutil.ToFloat64(SessionsStoppedTotal.WithLabelValues("error"))
	RecordStop(0.5, true)
	require.Equal(t, beforeErr+1, testutil.ToFloat64(SessionsStoppedTotal.WithLabelValues("error")))
}

func TestHandlerIsNotNil(t *testing.T) {
	require.NotNil(t, Handler())
}
