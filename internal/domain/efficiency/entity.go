package efficiency

import "time"

// Class represents a machine efficiency class predicted by the model
type Class string

const (
	ClassHigh   Class = "High"
	ClassLow    Class = "Low"
	ClassMedium Class = "Medium"
)

// labelTable maps model class indices to labels. The index assignment comes
// from the training run (0→High, 1→Low, 2→Medium) and is neither alphabetical
// nor severity-ordered; it must match the class list carried by the transform
// artifact and is validated against it at load time.
var labelTable = [...]Class{ClassHigh, ClassLow, ClassMedium}

// NumClasses is the number of efficiency classes the model distinguishes
const NumClasses = len(labelTable)

// LabelByIndex resolves a raw model class index to its label.
// Returns false for indices outside the label table.
func LabelByIndex(index int) (Class, bool) {
	if index < 0 || index >= NumClasses {
		return "", false
	}
	return labelTable[index], true
}

// Labels returns the efficiency labels in model index order
func Labels() [NumClasses]Class {
	return labelTable
}

// Valid checks if the class is a known efficiency class
func (c Class) Valid() bool {
	switch c {
	case ClassHigh, ClassLow, ClassMedium:
		return true
	}
	return false
}

// String returns string representation
func (c Class) String() string {
	return string(c)
}

// Prediction is the outcome of one inference pass over a feature record.
// Label and LabelIndex are always mutually consistent per the label table;
// Probabilities covers all classes and sums to ~1.
type Prediction struct {
	Label         Class             `json:"predicted_label"`
	LabelIndex    int               `json:"label_index"`
	Probabilities map[Class]float64 `json:"probabilities"`
}

// PredictionRecord is one stored prediction, flattened for persistence
// and event publishing.
type PredictionRecord struct {
	RequestID        string    `ch:"request_id" json:"request_id"`
	Timestamp        time.Time `ch:"timestamp" json:"timestamp"`
	OperationMode    string    `ch:"operation_mode" json:"operation_mode"`
	Temperature      float64   `ch:"temperature_c" json:"temperature_c"`
	Vibration        float64   `ch:"vibration_hz" json:"vibration_hz"`
	PowerConsumption float64   `ch:"power_consumption_kw" json:"power_consumption_kw"`
	NetworkLatency   float64   `ch:"network_latency_ms" json:"network_latency_ms"`
	PacketLoss       float64   `ch:"packet_loss_pct" json:"packet_loss_pct"`
	DefectRate       float64   `ch:"defect_rate_pct" json:"defect_rate_pct"`
	ProductionSpeed  float64   `ch:"production_speed" json:"production_speed"`
	MaintenanceScore float64   `ch:"maintenance_score" json:"maintenance_score"`
	ErrorRate        float64   `ch:"error_rate_pct" json:"error_rate_pct"`
	Label            string    `ch:"label" json:"predicted_label"`
	LabelIndex       int32     `ch:"label_index" json:"label_index"`
	ProbHigh         float64   `ch:"prob_high" json:"prob_high"`
	ProbLow          float64   `ch:"prob_low" json:"prob_low"`
	ProbMedium       float64   `ch:"prob_medium" json:"prob_medium"`
	LatencyMs        float64   `ch:"latency_ms" json:"latency_ms"`
}
