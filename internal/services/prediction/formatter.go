package prediction

import (
	"fmt"
	"math"

	"machina/internal/domain/efficiency"
	"machina/pkg/errors"
)

// probabilityPrecision is the number of decimal places probabilities are
// rounded to for display
const probabilityPrecision = 4

// Format resolves the raw model output into the response payload: the label
// per the fixed index→label table, the raw index, and the rounded per-class
// probability map. An index outside the label table is a FormatError; it
// indicates an artifact/table mismatch and must never be silently coerced.
func Format(index int, probabilities []float64) (*efficiency.Prediction, error) {
	label, ok := efficiency.LabelByIndex(index)
	if !ok {
		return nil, &errors.FormatError{Index: index}
	}

	if len(probabilities) != efficiency.NumClasses {
		return nil, &errors.FormatError{
			Index:  index,
			Reason: fmt.Sprintf("%d probabilities for %d classes", len(probabilities), efficiency.NumClasses),
		}
	}

	probs := make(map[efficiency.Class]float64, efficiency.NumClasses)
	for i, class := range efficiency.Labels() {
		probs[class] = roundProbability(probabilities[i])
	}

	return &efficiency.Prediction{
		Label:         label,
		LabelIndex:    index,
		Probabilities: probs,
	}, nil
}

func roundProbability(p float64) float64 {
	pow := math.Pow(10, probabilityPrecision)
	return math.Round(p*pow) / pow
}
