package efficiency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *FeatureRecord {
	return &FeatureRecord{
		OperationMode:    "Active",
		Temperature:      80.96,
		Vibration:        1.39,
		PowerConsumption: 9.87,
		NetworkLatency:   48.40,
		PacketLoss:       0.57,
		DefectRate:       4.72,
		ProductionSpeed:  147.69,
		MaintenanceScore: 0.8974,
		ErrorRate:        0.04,
	}
}

func TestLabelByIndex(t *testing.T) {
	tests := []struct {
		index int
		label Class
		ok    bool
	}{
		{index: 0, label: ClassHigh, ok: true},
		{index: 1, label: ClassLow, ok: true},
		{index: 2, label: ClassMedium, ok: true},
		{index: -1, ok: false},
		{index: 3, ok: false},
	}

	for _, tt := range tests {
		label, ok := LabelByIndex(tt.index)
		assert.Equal(t, tt.ok, ok)
		if tt.ok {
			assert.Equal(t, tt.label, label)
			assert.True(t, label.Valid())
		}
	}
}

func TestNumericFields_Order(t *testing.T) {
	// The transform and the trained model both depend on this order
	assert.Equal(t, []string{
		"Temperature_C",
		"Vibration_Hz",
		"Power_Consumption_kW",
		"Network_Latency_ms",
		"Packet_Loss_%",
		"Quality_Control_Defect_Rate_%",
		"Production_Speed_units_per_hr",
		"Predictive_Maintenance_Score",
		"Error_Rate_%",
	}, NumericFields())
}

func TestNumericValue(t *testing.T) {
	record := sampleRecord()

	for _, field := range NumericFields() {
		_, ok := record.NumericValue(field)
		assert.True(t, ok, field)
	}

	_, ok := record.NumericValue("Machine_ID")
	assert.False(t, ok)
}

func TestCanonical(t *testing.T) {
	first := sampleRecord().Canonical()
	second := sampleRecord().Canonical()
	require.Equal(t, first, second, "identical records must serialize identically")

	changed := sampleRecord()
	changed.Temperature = 81.0
	assert.NotEqual(t, first, changed.Canonical())

	changedMode := sampleRecord()
	changedMode.OperationMode = "Idle"
	assert.NotEqual(t, first, changedMode.Canonical())
}
