package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rgehrsitz/devfeas/internal/domain"
)

// Report is the input to every formatter: the results of one calculate run
type Report struct {
	ConfigPath  string                      `json:"configPath,omitempty"`
	GeneratedAt time.Time                   `json:"generatedAt"`
	Results     []*domain.FeasibilityResult `json:"results"`
	Assumptions []string                    `json:"assumptions,omitempty"`
}

// NewReport wraps engine results with the default assumptions
func NewReport(configPath string, results []*domain.FeasibilityResult) *Report {
	return &Report{
		ConfigPath:  configPath,
		GeneratedAt: time.Now(),
		Results:     results,
		Assumptions: DefaultAssumptions,
	}
}

// Formatter renders a report into bytes
type Formatter interface {
	Name() string
	Format(report *Report) ([]byte, error)
}

// FormatterFunc adapts a plain function to the Formatter interface
type FormatterFunc struct {
	ID string
	F  func(report *Report) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(report *Report) ([]byte, error) { return f.F(report) }

var formatters = map[string]Formatter{}

var aliases = map[string]string{
	"verbose":         "console",
	"console-verbose": "console",
	"table":           "console-lite",
	"monthly-csv":     "csv",
	"yml":             "yaml",
}

func register(f Formatter) {
	formatters[f.Name()] = f
}

func init() {
	register(ConsoleFormatter{})
	register(ConsoleVerboseFormatter{})
	register(MonthlyCSVFormatter{})
	register(CSVSummarizer{})
	register(JSONFormatter{Pretty: true})
	register(YAMLFormatter{})
}

// AvailableFormatterNames lists registered formatter names, sorted
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases lists alternative names accepted by GetFormatterByName
func AvailableFormatAliases() []string {
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetFormatterByName returns the formatter for a name or alias, or nil
func GetFormatterByName(name string) Formatter {
	name = strings.ToLower(strings.TrimSpace(name))
	if target, ok := aliases[name]; ok {
		name = target
	}
	return formatters[name]
}

// WriteFormatted renders the report and writes it to a timestamped file in the
// working directory, returning the file name
func WriteFormatted(f Formatter, report *Report, ext string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", fmt.Errorf("%s formatter: %w", f.Name(), err)
	}
	filename := fmt.Sprintf("feasibility_report_%s.%s", time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}
