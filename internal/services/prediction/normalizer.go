package prediction

import (
	"encoding/json"
	"strconv"

	"machina/internal/domain/efficiency"
	"machina/pkg/errors"
)

// Normalize maps a raw request body onto the fixed feature record the
// preprocessing transform expects. Every documented field must be present
// under its exact name; numeric fields must convert to float; unknown extra
// keys are ignored. On failure returns a SchemaError naming the offending
// field. Unseen categories are deliberately NOT rejected here; encoding them
// is the transform's responsibility.
func Normalize(raw map[string]interface{}) (*efficiency.FeatureRecord, error) {
	record := &efficiency.FeatureRecord{}

	mode, ok := raw[efficiency.FieldOperationMode]
	if !ok {
		return nil, &errors.SchemaError{Field: efficiency.FieldOperationMode, Reason: "missing required field"}
	}
	modeStr, ok := mode.(string)
	if !ok {
		return nil, &errors.SchemaError{Field: efficiency.FieldOperationMode, Reason: "must be a string"}
	}
	record.OperationMode = modeStr

	targets := map[string]*float64{
		efficiency.FieldTemperature:      &record.Temperature,
		efficiency.FieldVibration:        &record.Vibration,
		efficiency.FieldPowerConsumption: &record.PowerConsumption,
		efficiency.FieldNetworkLatency:   &record.NetworkLatency,
		efficiency.FieldPacketLoss:       &record.PacketLoss,
		efficiency.FieldDefectRate:       &record.DefectRate,
		efficiency.FieldProductionSpeed:  &record.ProductionSpeed,
		efficiency.FieldMaintenanceScore: &record.MaintenanceScore,
		efficiency.FieldErrorRate:        &record.ErrorRate,
	}

	// Fixed field order, so error reporting is deterministic when several
	// fields are bad at once.
	for _, field := range efficiency.NumericFields() {
		value, ok := raw[field]
		if !ok {
			return nil, &errors.SchemaError{Field: field, Reason: "missing required field"}
		}
		f, err := toFloat(value)
		if err != nil {
			return nil, &errors.SchemaError{Field: field, Reason: "not a numeric value"}
		}
		*targets[field] = f
	}

	return record, nil
}

// toFloat converts the JSON value forms a numeric feature may arrive in.
// Numeric strings are accepted, matching the float() coercion the training
// pipeline applied.
func toFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(v, 64)
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, errors.Newf("unsupported value type %T", value)
}
