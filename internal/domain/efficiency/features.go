package efficiency

import (
	"strconv"
	"strings"
)

// Wire names of the telemetry features, exactly as they appear in requests
// and in the training data. Matching is exact, including punctuation and
// casing.
const (
	FieldOperationMode    = "Operation_Mode"
	FieldTemperature      = "Temperature_C"
	FieldVibration        = "Vibration_Hz"
	FieldPowerConsumption = "Power_Consumption_kW"
	FieldNetworkLatency   = "Network_Latency_ms"
	FieldPacketLoss       = "Packet_Loss_%"
	FieldDefectRate       = "Quality_Control_Defect_Rate_%"
	FieldProductionSpeed  = "Production_Speed_units_per_hr"
	FieldMaintenanceScore = "Predictive_Maintenance_Score"
	FieldErrorRate        = "Error_Rate_%"
)

// numericFields lists the numeric feature names in pipeline order.
// The preprocessing transform and the trained model both depend on this order.
var numericFields = [...]string{
	FieldTemperature,
	FieldVibration,
	FieldPowerConsumption,
	FieldNetworkLatency,
	FieldPacketLoss,
	FieldDefectRate,
	FieldProductionSpeed,
	FieldMaintenanceScore,
	FieldErrorRate,
}

// NumericFields returns the numeric feature names in pipeline order
func NumericFields() []string {
	fields := make([]string, len(numericFields))
	copy(fields, numericFields[:])
	return fields
}

// FeatureRecord holds one validated telemetry sample: the categorical
// operation mode plus the nine numeric features, in the fixed order the
// preprocessing transform expects. Timestamp, machine id and the target
// label are never part of a record at inference time.
type FeatureRecord struct {
	OperationMode    string
	Temperature      float64
	Vibration        float64
	PowerConsumption float64
	NetworkLatency   float64
	PacketLoss       float64
	DefectRate       float64
	ProductionSpeed  float64
	MaintenanceScore float64
	ErrorRate        float64
}

// NumericValue returns the value of a numeric feature by its wire name
func (r *FeatureRecord) NumericValue(field string) (float64, bool) {
	switch field {
	case FieldTemperature:
		return r.Temperature, true
	case FieldVibration:
		return r.Vibration, true
	case FieldPowerConsumption:
		return r.PowerConsumption, true
	case FieldNetworkLatency:
		return r.NetworkLatency, true
	case FieldPacketLoss:
		return r.PacketLoss, true
	case FieldDefectRate:
		return r.DefectRate, true
	case FieldProductionSpeed:
		return r.ProductionSpeed, true
	case FieldMaintenanceScore:
		return r.MaintenanceScore, true
	case FieldErrorRate:
		return r.ErrorRate, true
	}
	return 0, false
}

// CategoricalValue returns the value of a categorical feature by its wire name
func (r *FeatureRecord) CategoricalValue(field string) (string, bool) {
	if field == FieldOperationMode {
		return r.OperationMode, true
	}
	return "", false
}

// Canonical returns a stable serialization of the record. Identical records
// always produce identical strings, so the result can key a prediction cache
// (the pipeline is deterministic).
func (r *FeatureRecord) Canonical() string {
	var b strings.Builder
	b.WriteString(r.OperationMode)
	for _, field := range numericFields {
		v, _ := r.NumericValue(field)
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}
