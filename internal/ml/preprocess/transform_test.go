package preprocess

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"machina/internal/domain/efficiency"
	"machina/pkg/errors"
)

const validArtifact = `{
	"version": 1,
	"columns": [
		"Operation_Mode", "Temperature_C", "Vibration_Hz", "Power_Consumption_kW",
		"Network_Latency_ms", "Packet_Loss_%", "Quality_Control_Defect_Rate_%",
		"Production_Speed_units_per_hr", "Predictive_Maintenance_Score", "Error_Rate_%"
	],
	"mean":  [1.0, 75.0, 2.0, 5.0, 25.0, 1.0, 2.5, 150.0, 0.5, 0.05],
	"scale": [0.8, 15.0, 1.0, 2.5, 12.0, 0.5, 1.5, 50.0, 0.25, 0.02],
	"categories": {
		"Operation_Mode": {"Active": 0, "Idle": 1, "Maintenance": 2}
	},
	"classes": ["High", "Low", "Medium"]
}`

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scaler.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testRecord() *efficiency.FeatureRecord {
	return &efficiency.FeatureRecord{
		OperationMode:    "Idle",
		Temperature:      90.0,
		Vibration:        3.0,
		PowerConsumption: 10.0,
		NetworkLatency:   49.0,
		PacketLoss:       1.5,
		DefectRate:       4.0,
		ProductionSpeed:  100.0,
		MaintenanceScore: 0.75,
		ErrorRate:        0.07,
	}
}

func TestLoad_Valid(t *testing.T) {
	transform, err := Load(writeArtifact(t, validArtifact))
	require.NoError(t, err)

	assert.Equal(t, 10, transform.NumFeatures())
	assert.Equal(t, []string{"High", "Low", "Medium"}, transform.Classes())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	var loadErr *errors.ArtifactLoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestLoad_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not JSON", content: "\x00\x01garbage"},
		{name: "empty columns", content: `{"columns": [], "mean": [], "scale": [], "classes": ["High","Low","Medium"]}`},
		{
			name:    "stat length mismatch",
			content: `{"columns": ["A","B"], "mean": [1.0], "scale": [1.0, 2.0], "classes": ["High","Low","Medium"]}`,
		},
		{
			name:    "zero scale",
			content: `{"columns": ["A"], "mean": [1.0], "scale": [0.0], "classes": ["High","Low","Medium"]}`,
		},
		{
			name:    "wrong class count",
			content: `{"columns": ["A"], "mean": [1.0], "scale": [1.0], "classes": ["High","Low"]}`,
		},
		{
			name:    "class order mismatch",
			content: `{"columns": ["A"], "mean": [1.0], "scale": [1.0], "classes": ["High","Medium","Low"]}`,
		},
		{
			name:    "unknown categorical column",
			content: `{"columns": ["A"], "mean": [1.0], "scale": [1.0], "categories": {"B": {"x": 0}}, "classes": ["High","Low","Medium"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeArtifact(t, tt.content))
			require.Error(t, err)

			var loadErr *errors.ArtifactLoadError
			require.ErrorAs(t, err, &loadErr)
		})
	}
}

func TestApply(t *testing.T) {
	transform, err := Load(writeArtifact(t, validArtifact))
	require.NoError(t, err)

	vector, err := transform.Apply(testRecord())
	require.NoError(t, err)
	require.Len(t, vector, 10)

	// (encoded/raw value - mean) / scale, column by column
	assert.InDelta(t, (1.0-1.0)/0.8, vector[0], 1e-12)   // Idle → code 1
	assert.InDelta(t, (90.0-75.0)/15.0, vector[1], 1e-12)
	assert.InDelta(t, (3.0-2.0)/1.0, vector[2], 1e-12)
	assert.InDelta(t, (10.0-5.0)/2.5, vector[3], 1e-12)
	assert.InDelta(t, (49.0-25.0)/12.0, vector[4], 1e-12)
	assert.InDelta(t, (1.5-1.0)/0.5, vector[5], 1e-12)
	assert.InDelta(t, (4.0-2.5)/1.5, vector[6], 1e-12)
	assert.InDelta(t, (100.0-150.0)/50.0, vector[7], 1e-12)
	assert.InDelta(t, (0.75-0.5)/0.25, vector[8], 1e-12)
	assert.InDelta(t, (0.07-0.05)/0.02, vector[9], 1e-12)
}

func TestApply_Deterministic(t *testing.T) {
	transform, err := Load(writeArtifact(t, validArtifact))
	require.NoError(t, err)

	first, err := transform.Apply(testRecord())
	require.NoError(t, err)
	second, err := transform.Apply(testRecord())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestApply_UnseenCategory(t *testing.T) {
	transform, err := Load(writeArtifact(t, validArtifact))
	require.NoError(t, err)

	record := testRecord()
	record.OperationMode = "Hibernating"

	_, err = transform.Apply(record)
	require.Error(t, err)

	var transformErr *errors.TransformError
	require.ErrorAs(t, err, &transformErr)
	assert.Equal(t, "Operation_Mode", transformErr.Field)
	assert.Equal(t, "Hibernating", transformErr.Value)
	assert.True(t, errors.IsCallerFault(err), "unseen category is a caller fault")
}
