package output

import (
	"fmt"
	"io"
	"os"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"gopkg.in/yaml.v3"
)

// GenerateReport renders the report in the named format and writes it to w
func GenerateReport(w io.Writer, report *Report, format string) error {
	f := GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("unsupported format: %s", format)
	}
	data, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("%s formatter: %w", f.Name(), err)
	}
	_, err = w.Write(data)
	return err
}

// SaveConfiguration saves a configuration to a YAML file
func SaveConfiguration(config *domain.Configuration, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}
