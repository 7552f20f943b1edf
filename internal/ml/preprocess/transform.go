package preprocess

import (
	"encoding/json"
	"os"

	"machina/internal/domain/efficiency"
	"machina/pkg/errors"
)

// Transform is the fitted preprocessing transform: per-column standardization
// statistics plus the categorical code table, exported by the training
// pipeline. Loaded once at startup and immutable afterwards; Apply is safe
// for concurrent use.
type Transform struct {
	columns    []string
	mean       []float64
	scale      []float64
	categories map[string]map[string]int
	classes    []string
}

// artifact mirrors the JSON layout of the exported transform file
type artifact struct {
	Version    int                       `json:"version"`
	Columns    []string                  `json:"columns"`
	Mean       []float64                 `json:"mean"`
	Scale      []float64                 `json:"scale"`
	Categories map[string]map[string]int `json:"categories"`
	Classes    []string                  `json:"classes"`
}

// Load reads and validates the transform artifact. Any read, parse or
// consistency failure aborts with an ArtifactLoadError; there is no partial
// load and no retry.
func Load(path string) (*Transform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errors.ArtifactLoadError{Path: path, Err: err}
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, &errors.ArtifactLoadError{Path: path, Err: errors.Wrap(err, "corrupt transform artifact")}
	}

	if err := validate(&a); err != nil {
		return nil, &errors.ArtifactLoadError{Path: path, Err: err}
	}

	return &Transform{
		columns:    a.Columns,
		mean:       a.Mean,
		scale:      a.Scale,
		categories: a.Categories,
		classes:    a.Classes,
	}, nil
}

// validate checks internal consistency of the artifact and that its class
// list matches the compiled-in label table. A mismatch means the artifact
// pair was produced by a different training run than this build expects.
func validate(a *artifact) error {
	if len(a.Columns) == 0 {
		return errors.New("transform artifact has no columns")
	}
	if len(a.Mean) != len(a.Columns) || len(a.Scale) != len(a.Columns) {
		return errors.Newf("scaling statistics length mismatch: %d columns, %d means, %d scales",
			len(a.Columns), len(a.Mean), len(a.Scale))
	}
	for i, s := range a.Scale {
		if s == 0 {
			return errors.Newf("zero scale for column %q", a.Columns[i])
		}
	}
	if len(a.Classes) != efficiency.NumClasses {
		return errors.Newf("artifact lists %d classes, expected %d", len(a.Classes), efficiency.NumClasses)
	}
	for i, name := range a.Classes {
		label, ok := efficiency.LabelByIndex(i)
		if !ok || label.String() != name {
			return errors.Newf("class %d is %q in artifact, expected %q", i, name, label)
		}
	}
	for field := range a.Categories {
		found := false
		for _, col := range a.Columns {
			if col == field {
				found = true
				break
			}
		}
		if !found {
			return errors.Newf("categorical field %q not among columns", field)
		}
	}
	return nil
}

// NumFeatures returns the transformed vector length
func (t *Transform) NumFeatures() int {
	return len(t.columns)
}

// Columns returns the feature columns in transform order
func (t *Transform) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// Classes returns the class names in training index order
func (t *Transform) Classes() []string {
	classes := make([]string, len(t.classes))
	copy(classes, t.classes)
	return classes
}

// Apply converts a validated feature record into the scaled numeric vector
// the classifier was trained on. Categorical fields are encoded through the
// fitted code table, then every column is standardized with the fitted mean
// and scale. Pure: no state is mutated, identical input yields identical
// output.
func (t *Transform) Apply(record *efficiency.FeatureRecord) ([]float64, error) {
	vector := make([]float64, len(t.columns))

	for i, col := range t.columns {
		var raw float64

		if codes, ok := t.categories[col]; ok {
			value, ok := record.CategoricalValue(col)
			if !ok {
				return nil, &errors.TransformError{Field: col, Value: ""}
			}
			code, ok := codes[value]
			if !ok {
				// No fallback bucket in the fitted encoder
				return nil, &errors.TransformError{Field: col, Value: value}
			}
			raw = float64(code)
		} else {
			value, ok := record.NumericValue(col)
			if !ok {
				return nil, &errors.TransformError{Field: col, Value: ""}
			}
			raw = value
		}

		vector[i] = (raw - t.mean[i]) / t.scale[i]
	}

	return vector, nil
}
