package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breachcase/breachwatch/internal/model"
)

func int64Ptr(v int64) *int64 { return &v }

func vectorPtr(v model.AttackVector) *model.AttackVector { return &v }

func TestComputeSignals_RecordsWithinTolerance(t *testing.T) {
	tests := []struct {
		name      string
		extracted int64
		candidate int64
		want      bool
	}{
		{"equal", 1000, 1000, true},
		{"well within", 5_700_000, 5_800_000, true},
		{"exactly at boundary", 90, 100, true},
		{"just outside", 89, 100, false},
		{"order independent", 100, 90, true},
		{"far apart", 1000, 100_000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := ComputeSignals(
				model.Extraction{RecordsAffected: int64Ptr(tt.extracted)},
				[]model.Breach{{ID: "b-1", RecordsAffected: int64Ptr(tt.candidate)}},
				0.10,
			)
			sig := signals["b-1"]
			require.NotNil(t, sig.RecordsMatch)
			assert.Equal(t, tt.want, *sig.RecordsMatch)
		})
	}
}

func TestComputeSignals_MissingDataIsIncomparable(t *testing.T) {
	signals := ComputeSignals(
		model.Extraction{RecordsAffected: int64Ptr(1000)},
		[]model.Breach{{ID: "b-1"}},
		0.10,
	)
	sig := signals["b-1"]
	assert.Nil(t, sig.RecordsMatch, "missing candidate count must be incomparable, not false")
	assert.Nil(t, sig.AttackVectorMatch)
	assert.False(t, sig.BothMatch())
}

func TestComputeSignals_AttackVector(t *testing.T) {
	signals := ComputeSignals(
		model.Extraction{AttackVector: vectorPtr(model.AttackVectorRansomware)},
		[]model.Breach{
			{ID: "same", AttackVector: vectorPtr(model.AttackVectorRansomware)},
			{ID: "different", AttackVector: vectorPtr(model.AttackVectorPhishing)},
			{ID: "unknown"},
		},
		0.10,
	)

	require.NotNil(t, signals["same"].AttackVectorMatch)
	assert.True(t, *signals["same"].AttackVectorMatch)

	require.NotNil(t, signals["different"].AttackVectorMatch)
	assert.False(t, *signals["different"].AttackVectorMatch)

	assert.Nil(t, signals["unknown"].AttackVectorMatch)
}

func TestComputeSignals_BothMatch(t *testing.T) {
	signals := ComputeSignals(
		model.Extraction{
			RecordsAffected: int64Ptr(1_000_000),
			AttackVector:    vectorPtr(model.AttackVectorRansomware),
		},
		[]model.Breach{{
			ID:              "b-1",
			RecordsAffected: int64Ptr(1_050_000),
			AttackVector:    vectorPtr(model.AttackVectorRansomware),
		}},
		0.10,
	)
	assert.True(t, signals["b-1"].BothMatch())
}
