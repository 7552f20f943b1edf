package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCallerFault(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fault bool
	}{
		{name: "schema", err: &SchemaError{Field: "Temperature_C", Reason: "missing required field"}, fault: true},
		{name: "transform", err: &TransformError{Field: "Operation_Mode", Value: "Hibernating"}, fault: true},
		{name: "wrapped schema", err: Wrap(&SchemaError{Field: "Vibration_Hz"}, "pipeline"), fault: true},
		{name: "inference", err: &InferenceError{Got: 5, Want: 10}, fault: false},
		{name: "format", err: &FormatError{Index: 7}, fault: false},
		{name: "artifact load", err: &ArtifactLoadError{Path: "/models/x.onnx", Err: New("corrupt")}, fault: false},
		{name: "plain", err: New("boom"), fault: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fault, IsCallerFault(tt.err))
		})
	}
}

func TestFieldOf(t *testing.T) {
	assert.Equal(t, "Temperature_C", FieldOf(&SchemaError{Field: "Temperature_C"}))
	assert.Equal(t, "Operation_Mode", FieldOf(&TransformError{Field: "Operation_Mode"}))
	assert.Equal(t, "", FieldOf(&InferenceError{Got: 1, Want: 2}))
	assert.Equal(t, "", FieldOf(New("boom")))
}

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, (&SchemaError{Field: "Temperature_C", Reason: "missing required field"}).Error(), "Temperature_C")
	assert.Contains(t, (&TransformError{Field: "Operation_Mode", Value: "Hibernating"}).Error(), "Hibernating")
	assert.Contains(t, (&InferenceError{Got: 5, Want: 10}).Error(), "10")
	assert.Contains(t, (&FormatError{Index: 7}).Error(), "7")
}

func TestArtifactLoadErrorUnwrap(t *testing.T) {
	inner := New("corrupt")
	err := &ArtifactLoadError{Path: "/models/scaler.json", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "/models/scaler.json")
}
