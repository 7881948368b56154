package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

// TemplateRegistry manages built-in scenario templates
type TemplateRegistry struct {
	templates map[string]Template
}

// Template represents a named collection of transforms
type Template struct {
	Name        string
	Description string
	Transforms  []ScenarioTransform
}

// NewTemplateRegistry creates an empty template registry
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]Template),
	}
}

// Register adds a template to the registry
func (tr *TemplateRegistry) Register(t Template) {
	tr.templates[strings.ToLower(t.Name)] = t
}

// Get retrieves a template by name (case-insensitive)
func (tr *TemplateRegistry) Get(name string) (Template, bool) {
	t, ok := tr.templates[strings.ToLower(name)]
	return t, ok
}

// List returns all registered template names in alphabetical order
func (tr *TemplateRegistry) List() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func pct(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// CreateBuiltInTemplates creates a template registry with the usual feasibility
// sensitivities. rentYield is the gross yield used by the hold template.
func CreateBuiltInTemplates(rentYield decimal.Decimal) *TemplateRegistry {
	registry := NewTemplateRegistry()

	// Pricing
	for _, move := range []int64{-20, -10, -5, 5, 10} {
		direction := "up"
		if move < 0 {
			direction = "down"
		}
		abs := move
		if abs < 0 {
			abs = -abs
		}
		registry.Register(Template{
			Name:        fmt.Sprintf("sale_price_%s_%d", direction, abs),
			Description: fmt.Sprintf("Sale prices %s %d%%", direction, abs),
			Transforms:  []ScenarioTransform{&ScaleSalePrices{Percent: pct(move)}},
		})
	}

	// Costs
	for _, move := range []int64{-10, 5, 10, 20} {
		direction := "up"
		if move < 0 {
			direction = "down"
		}
		abs := move
		if abs < 0 {
			abs = -abs
		}
		registry.Register(Template{
			Name:        fmt.Sprintf("construction_%s_%d", direction, abs),
			Description: fmt.Sprintf("Construction costs %s %d%%", direction, abs),
			Transforms:  []ScenarioTransform{&ScaleConstructionCosts{Percent: pct(move)}},
		})
	}

	// Timing and finance
	registry.Register(Template{
		Name:        "delay_3m",
		Description: "Construction starts 3 months later",
		Transforms:  []ScenarioTransform{&DelayConstruction{Months: 3}},
	})
	registry.Register(Template{
		Name:        "delay_6m",
		Description: "Construction starts 6 months later",
		Transforms:  []ScenarioTransform{&DelayConstruction{Months: 6}},
	})
	registry.Register(Template{
		Name:        "rates_up_100bp",
		Description: "Senior debt 1% dearer",
		Transforms: []ScenarioTransform{
			&AdjustInterestRate{Tier: domain.SourceSenior, Delta: decimal.NewFromFloat(0.01)},
		},
	})

	// Strategy
	registry.Register(Template{
		Name:        "hold",
		Description: fmt.Sprintf("Hold and lease at a %s%% gross yield", rentYield.Mul(hundred).StringFixed(2)),
		Transforms:  []ScenarioTransform{&SetStrategy{Strategy: domain.StrategyHold, RentYield: rentYield}},
	})
	registry.Register(Template{
		Name:        "sell",
		Description: "Sell every product on completion",
		Transforms:  []ScenarioTransform{&SetStrategy{Strategy: domain.StrategySell}},
	})

	// Combination strategies
	registry.Register(Template{
		Name:        "downside",
		Description: "Prices down 10%, construction up 10%, 3 month delay",
		Transforms: []ScenarioTransform{
			&ScaleSalePrices{Percent: pct(-10)},
			&ScaleConstructionCosts{Percent: pct(10)},
			&DelayConstruction{Months: 3},
		},
	})
	registry.Register(Template{
		Name:        "upside",
		Description: "Prices up 5%, construction down 5%",
		Transforms: []ScenarioTransform{
			&ScaleSalePrices{Percent: pct(5)},
			&ScaleConstructionCosts{Percent: pct(-5)},
		},
	})

	return registry
}

// ApplyTemplate applies a template to a base scenario
func ApplyTemplate(base *domain.Scenario, template Template) (*domain.Scenario, error) {
	if len(template.Transforms) == 0 {
		return base.DeepCopy(), nil
	}
	return ApplyTransforms(base, template.Transforms)
}

// ParseTemplateList parses a comma-separated list of template names
func ParseTemplateList(templateList string) []string {
	if templateList == "" {
		return nil
	}

	parts := strings.Split(templateList, ",")
	templates := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			templates = append(templates, trimmed)
		}
	}
	return templates
}

// GetTemplateHelp returns formatted help text for all templates
func GetTemplateHelp(registry *TemplateRegistry) string {
	if len(registry.templates) == 0 {
		return "No templates registered"
	}

	var sb strings.Builder
	sb.WriteString("Available Templates:\n\n")

	order := []string{"Pricing", "Costs", "Timing & Finance", "Strategy", "Combination Strategies"}
	categories := make(map[string][]Template)

	for _, name := range registry.List() {
		template := registry.templates[name]
		switch {
		case strings.HasPrefix(name, "sale_price_"):
			categories["Pricing"] = append(categories["Pricing"], template)
		case strings.HasPrefix(name, "construction_"):
			categories["Costs"] = append(categories["Costs"], template)
		case strings.HasPrefix(name, "delay_"), strings.HasPrefix(name, "rates_"):
			categories["Timing & Finance"] = append(categories["Timing & Finance"], template)
		case name == "hold", name == "sell":
			categories["Strategy"] = append(categories["Strategy"], template)
		default:
			categories["Combination Strategies"] = append(categories["Combination Strategies"], template)
		}
	}

	for _, category := range order {
		templates := categories[category]
		if len(templates) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("%s:\n", category))
		for _, t := range templates {
			sb.WriteString(fmt.Sprintf("  %-24s %s\n", t.Name, t.Description))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Usage:\n")
	sb.WriteString("  devfeas compare project.yaml --with sale_price_down_10,construction_up_10\n")
	sb.WriteString("  devfeas compare project.yaml --with downside,hold\n")

	return sb.String()
}
