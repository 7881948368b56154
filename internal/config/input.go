package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hjson/hjson-go/v4"
	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Format is an input file encoding
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatHJSON Format = "hjson"
)

// FormatForFile picks the decoder from the file extension
func FormatForFile(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".hjson":
		return FormatHJSON, nil
	}
	return "", fmt.Errorf("unsupported file extension %q (use .yaml, .yml, .json or .hjson)", filepath.Ext(filename))
}

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads and validates a scenario file in YAML, JSON or HJSON
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	format, err := FormatForFile(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data, format)
}

// Parse decodes and validates a configuration from raw bytes
func (ip *InputParser) Parse(data []byte, format Format) (*domain.Configuration, error) {
	var config domain.Configuration
	if err := decode(data, format, &config); err != nil {
		return nil, err
	}

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// LoadTaxTables loads a tax table override file. Jurisdictions and tax types it
// names replace the embedded defaults; everything else is kept.
func (ip *InputParser) LoadTaxTables(filename string) (*domain.TaxConfiguration, error) {
	format, err := FormatForFile(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read tax tables %s: %w", filename, err)
	}

	var tables domain.TaxConfiguration
	if err := decode(data, format, &tables); err != nil {
		return nil, err
	}
	if err := ip.ValidateTaxTables(&tables); err != nil {
		return nil, fmt.Errorf("tax table validation failed: %w", err)
	}
	return &tables, nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if len(config.Scenarios) == 0 {
		return fmt.Errorf("no scenarios provided")
	}

	seen := make(map[string]int, len(config.Scenarios))
	for i := range config.Scenarios {
		scenario := &config.Scenarios[i]
		if err := ip.ValidateScenario(scenario); err != nil {
			return fmt.Errorf("scenario %d (%s) validation failed: %w", i, scenario.Name, err)
		}
		if prev, dup := seen[scenario.Name]; dup {
			return fmt.Errorf("scenario %d duplicates the name %q of scenario %d", i, scenario.Name, prev)
		}
		seen[scenario.Name] = i
	}

	if config.TaxTables != nil {
		if err := ip.ValidateTaxTables(config.TaxTables); err != nil {
			return fmt.Errorf("tax tables: %w", err)
		}
	}
	return nil
}

// ValidateScenario applies the engine's structural checks plus the input rules
// a scenario file must meet
func (ip *InputParser) ValidateScenario(scenario *domain.Scenario) error {
	if err := scenario.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(scenario.Site.Jurisdiction) == "" {
		return fmt.Errorf("site jurisdiction is required")
	}
	if len(scenario.Revenues) == 0 {
		return fmt.Errorf("at least one revenue item is required")
	}

	names := make(map[string]bool, len(scenario.Costs))
	for _, c := range scenario.Costs {
		if names[c.Name] {
			return fmt.Errorf("duplicate cost item name %q", c.Name)
		}
		names[c.Name] = true
	}
	names = make(map[string]bool, len(scenario.Revenues))
	for _, r := range scenario.Revenues {
		if names[r.Name] {
			return fmt.Errorf("duplicate revenue item name %q", r.Name)
		}
		names[r.Name] = true
	}
	return nil
}

// ValidateTaxTables checks that every bracket table is ordered and every rate sane
func (ip *InputParser) ValidateTaxTables(tables *domain.TaxConfiguration) error {
	for code, taxes := range tables.Jurisdictions {
		for taxType, schedule := range taxes {
			if taxType != domain.TaxStampDuty && taxType != domain.TaxLandTax {
				return fmt.Errorf("%s: unknown tax type %q", code, taxType)
			}
			if err := validateBrackets(schedule.Brackets); err != nil {
				return fmt.Errorf("%s %s: %w", code, taxType, err)
			}
			if schedule.ForeignSurcharge.LessThan(decimal.Zero) {
				return fmt.Errorf("%s %s: foreign surcharge cannot be negative", code, taxType)
			}
		}
	}
	for taxType, rate := range tables.FallbackRates {
		if rate.LessThan(decimal.Zero) || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("fallback rate for %s must be in [0, 1), got %s", taxType, rate)
		}
	}
	return nil
}

func validateBrackets(brackets []domain.TaxBracket) error {
	if len(brackets) == 0 {
		return fmt.Errorf("at least one bracket is required")
	}
	previous := decimal.Zero
	for i, b := range brackets {
		last := i == len(brackets)-1
		if b.Rate.LessThan(decimal.Zero) || b.Base.LessThan(decimal.Zero) {
			return fmt.Errorf("bracket %d has a negative rate or base", i)
		}
		switch b.Method {
		case "", domain.MethodSliding, domain.MethodFlat:
		default:
			return fmt.Errorf("bracket %d has unknown method %q", i, b.Method)
		}
		if last && b.UpperLimit.IsZero() {
			continue
		}
		if b.UpperLimit.LessThanOrEqual(previous) {
			return fmt.Errorf("bracket %d upper limit %s must exceed %s", i, b.UpperLimit, previous)
		}
		previous = b.UpperLimit
	}
	return nil
}

// decode unmarshals strictly: unknown keys are errors in every format
func decode(data []byte, format Format, out interface{}) error {
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(out); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("failed to parse YAML: file is empty")
			}
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatJSON:
		if err := decodeJSON(data, out); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	case FormatHJSON:
		// HJSON is read generically then re-encoded so the json tags drive field mapping
		var raw interface{}
		if err := hjson.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse HJSON: %w", err)
		}
		jsonBytes, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("failed to convert HJSON: %w", err)
		}
		if err := decodeJSON(jsonBytes, out); err != nil {
			return fmt.Errorf("failed to parse HJSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	return nil
}

func decodeJSON(data []byte, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
