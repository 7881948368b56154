package compare

import (
	"bytes"
	"encoding/json"
)

// JSONFormatter formats comparison results as JSON
type JSONFormatter struct {
	Pretty bool
}

// comparisonDocument adds a per-scenario funding verdict to the comparison set
type comparisonDocument struct {
	*ComparisonSet
	Feasible map[string]bool `json:"feasible"`
}

// Format generates JSON output for comparison results. Scenario names are written
// unescaped so "Lot 3 & 4" stays readable.
func (jf *JSONFormatter) Format(compSet *ComparisonSet) (string, error) {
	doc := comparisonDocument{ComparisonSet: compSet, Feasible: map[string]bool{}}
	if compSet.BaseResult != nil {
		doc.Feasible[compSet.BaseResult.ScenarioName] = compSet.BaseResult.Feasible()
	}
	for _, alt := range compSet.AlternativeResults {
		doc.Feasible[alt.ScenarioName] = alt.Feasible()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if jf.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
