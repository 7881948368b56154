package output

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter emits the report as block-style YAML with the same field names as JSON
type YAMLFormatter struct{}

func (y YAMLFormatter) Name() string { return "yaml" }

func (y YAMLFormatter) Format(report *Report) ([]byte, error) {
	// Result types carry json tags only; go through JSON so keys match
	data, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)
	return yaml.Marshal(&node)
}

// blockStyle clears the flow and quoting styles inherited from the JSON source
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
