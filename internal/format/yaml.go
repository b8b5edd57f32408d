package format

import (
	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats reports as YAML with calculated values
type YAMLFormatter struct {
	precision int
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{precision: DefaultPrecision}
}

// Format formats a report as YAML
func (f *YAMLFormatter) Format(report *Report) (string, error) {
	// Use the same output structure as JSON formatter
	jsonFormatter := &JSONFormatter{precision: f.precision}
	output := jsonFormatter.BuildOutput(report)

	data, err := yaml.Marshal(output)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
