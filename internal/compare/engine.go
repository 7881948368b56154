package compare

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/devfeas/internal/calculation"
	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/rgehrsitz/devfeas/internal/transform"
	"github.com/shopspring/decimal"
)

// DefaultRentYield is the gross yield used when converting sales to rent
var DefaultRentYield = decimal.NewFromFloat(0.05)

// CompareEngine orchestrates scenario comparison
type CompareEngine struct {
	Engine            *calculation.Engine
	MetricsCalculator *MetricsCalculator
	TemplateRegistry  *transform.TemplateRegistry
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(engine *calculation.Engine) *CompareEngine {
	return &CompareEngine{
		Engine:            engine,
		MetricsCalculator: NewMetricsCalculator(),
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	BaseScenarioName string                        // Name of the base scenario; empty means the first
	Templates        []string                      // Template names to apply, one alternative each
	Adjustments      []transform.ScenarioTransform // Applied together as one extra "custom" alternative
	RentYield        decimal.Decimal               // Gross yield for the hold template; zero uses DefaultRentYield
}

// Compare runs the base scenario and one alternative per template
func (ce *CompareEngine) Compare(
	ctx context.Context,
	config *domain.Configuration,
	options CompareOptions,
) (*ComparisonSet, error) {

	if ce.TemplateRegistry == nil {
		yield := options.RentYield
		if yield.IsZero() {
			yield = DefaultRentYield
		}
		ce.TemplateRegistry = transform.CreateBuiltInTemplates(yield)
	}

	baseScenario, err := findScenario(config, options.BaseScenarioName)
	if err != nil {
		return nil, err
	}

	scenarios := []domain.Scenario{*baseScenario}
	descriptions := []string{baseScenario.Description}

	for _, templateName := range options.Templates {
		template, ok := ce.TemplateRegistry.Get(templateName)
		if !ok {
			return nil, fmt.Errorf("template %s not found", templateName)
		}

		modifiedScenario, err := transform.ApplyTemplate(baseScenario, template)
		if err != nil {
			return nil, fmt.Errorf("failed to apply template %s: %w", templateName, err)
		}

		// Update scenario name to reflect the template
		modifiedScenario.Name = baseScenario.Name + "_" + templateName
		scenarios = append(scenarios, *modifiedScenario)
		descriptions = append(descriptions, template.Description)
	}

	if len(options.Adjustments) > 0 {
		modifiedScenario, err := transform.ApplyTransforms(baseScenario, options.Adjustments)
		if err != nil {
			return nil, fmt.Errorf("failed to apply adjustments: %w", err)
		}
		modifiedScenario.Name = baseScenario.Name + "_custom"
		scenarios = append(scenarios, *modifiedScenario)
		descriptions = append(descriptions, transform.Describe(options.Adjustments))
	}

	compSet, err := ce.run(ctx, &domain.Configuration{Scenarios: scenarios, TaxTables: config.TaxTables}, descriptions)
	if err != nil {
		return nil, err
	}
	return compSet, nil
}

// CompareStrategies runs a scenario as authored and converted to the other exit
// strategy, so sell and hold can be read side by side
func (ce *CompareEngine) CompareStrategies(
	ctx context.Context,
	scenario *domain.Scenario,
	hold *domain.HoldStrategy,
	rentYield decimal.Decimal,
) (*ComparisonSet, error) {
	if scenario == nil {
		return nil, fmt.Errorf("scenario cannot be nil")
	}
	if rentYield.IsZero() {
		rentYield = DefaultRentYield
	}

	target := domain.StrategyHold
	if scenario.Strategy() == domain.StrategyHold {
		target = domain.StrategySell
	}
	switchStrategy := &transform.SetStrategy{Strategy: target, RentYield: rentYield, Hold: hold}

	alternative, err := transform.ApplyTransforms(scenario, []transform.ScenarioTransform{switchStrategy})
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s to %s: %w", scenario.Name, target, err)
	}
	alternative.Name = scenario.Name + "_" + string(target)

	return ce.run(ctx,
		&domain.Configuration{Scenarios: []domain.Scenario{*scenario, *alternative}},
		[]string{scenario.Description, switchStrategy.Description()})
}

// CompareScenarios compares explicit scenarios (not using templates)
func (ce *CompareEngine) CompareScenarios(
	ctx context.Context,
	config *domain.Configuration,
	baseScenarioName string,
	alternativeScenarioNames []string,
) (*ComparisonSet, error) {

	base, err := findScenario(config, baseScenarioName)
	if err != nil {
		return nil, err
	}

	scenarios := []domain.Scenario{*base}
	descriptions := []string{base.Description}
	for _, altName := range alternativeScenarioNames {
		alt, err := findScenario(config, altName)
		if err != nil {
			return nil, fmt.Errorf("alternative scenario %s not found", altName)
		}
		scenarios = append(scenarios, *alt)
		descriptions = append(descriptions, alt.Description)
	}

	return ce.run(ctx, &domain.Configuration{Scenarios: scenarios, TaxTables: config.TaxTables}, descriptions)
}

// run evaluates every scenario concurrently; the first is the base
func (ce *CompareEngine) run(ctx context.Context, config *domain.Configuration, descriptions []string) (*ComparisonSet, error) {
	results, err := ce.Engine.RunScenarios(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate scenarios: %w", err)
	}

	baseResult := ce.MetricsCalculator.CalculateMetrics(results[0])
	baseResult.Description = descriptions[0]

	alternatives := []ComparisonResult{}
	for i, result := range results[1:] {
		altResult := ce.MetricsCalculator.CalculateMetrics(result)
		altResult.Description = descriptions[i+1]
		altResult = ce.MetricsCalculator.CalculateComparison(altResult, baseResult)
		alternatives = append(alternatives, altResult)
	}

	compSet := &ComparisonSet{
		BaseScenarioName:   baseResult.ScenarioName,
		BaseResult:         &baseResult,
		AlternativeResults: alternatives,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}

func findScenario(config *domain.Configuration, name string) (*domain.Scenario, error) {
	if config == nil || len(config.Scenarios) == 0 {
		return nil, fmt.Errorf("configuration has no scenarios")
	}
	if name == "" {
		return &config.Scenarios[0], nil
	}
	for i := range config.Scenarios {
		if config.Scenarios[i].Name == name {
			return &config.Scenarios[i], nil
		}
	}
	return nil, fmt.Errorf("base scenario %s not found in configuration", name)
}
