package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

// TransformRegistry provides a central registry for all available transforms.
// It enables creation of transforms from string parameters, useful for CLI commands.
type TransformRegistry struct {
	factories map[string]TransformFactory
}

// TransformFactory is a function that creates a transform from parameters.
type TransformFactory func(params map[string]string) (ScenarioTransform, error)

// shorthand maps a single "key=value" assignment onto a transform and its parameter
var shorthand = map[string]struct {
	transform string
	param     string
	fixed     map[string]string
}{
	"land_price":            {transform: "adjust_land_price", param: "price"},
	"sale_price_pct":        {transform: "scale_sale_prices", param: "pct"},
	"rent_pct":              {transform: "scale_rents", param: "pct"},
	"construction_cost_pct": {transform: "scale_construction_costs", param: "pct"},
	"construction_delay":    {transform: "delay_construction", param: "months"},
	"settlement_shift":      {transform: "shift_settlement", param: "months"},
	"senior_rate_delta":     {transform: "adjust_interest_rate", param: "delta", fixed: map[string]string{"tier": "senior"}},
	"mezzanine_rate_delta":  {transform: "adjust_interest_rate", param: "delta", fixed: map[string]string{"tier": "mezzanine"}},
	"strategy":              {transform: "set_strategy", param: "strategy"},
}

// NewTransformRegistry creates a new registry with all built-in transforms registered.
func NewTransformRegistry() *TransformRegistry {
	registry := &TransformRegistry{
		factories: make(map[string]TransformFactory),
	}

	registry.Register("adjust_land_price", createAdjustLandPrice)
	registry.Register("scale_sale_prices", createScaleSalePrices)
	registry.Register("scale_rents", createScaleRents)
	registry.Register("scale_construction_costs", createScaleConstructionCosts)
	registry.Register("set_escalation", createSetEscalation)
	registry.Register("set_strategy", createSetStrategy)
	registry.Register("delay_construction", createDelayConstruction)
	registry.Register("shift_settlement", createShiftSettlement)
	registry.Register("adjust_interest_rate", createAdjustInterestRate)

	return registry
}

// Register adds a transform factory to the registry.
func (r *TransformRegistry) Register(name string, factory TransformFactory) {
	r.factories[name] = factory
}

// Create creates a transform by name with the given parameters.
func (r *TransformRegistry) Create(name string, params map[string]string) (ScenarioTransform, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unknown transform: %s", name)
	}

	return factory(params)
}

// List returns the names of all registered transforms in alphabetical order.
func (r *TransformRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTransformSpec parses a transform specification string.
// Two formats are accepted:
//
//	"transform_name:param1=value1,param2=value2"  e.g. "set_strategy:strategy=hold,yield=0.05"
//	"key=value"                                   e.g. "land_price=2500000", "sale_price_pct=-10"
func (r *TransformRegistry) ParseTransformSpec(spec string) (ScenarioTransform, error) {
	spec = strings.TrimSpace(spec)
	if !strings.Contains(spec, ":") {
		return r.parseShorthand(spec)
	}

	parts := strings.SplitN(spec, ":", 2)
	name := strings.TrimSpace(parts[0])
	paramsStr := strings.TrimSpace(parts[1])

	params := make(map[string]string)
	if paramsStr != "" {
		for _, paramPair := range strings.Split(paramsStr, ",") {
			kv := strings.SplitN(paramPair, "=", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", paramPair)
			}
			params[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	return r.Create(name, params)
}

func (r *TransformRegistry) parseShorthand(spec string) (ScenarioTransform, error) {
	kv := strings.SplitN(spec, "=", 2)
	if len(kv) != 2 {
		return nil, fmt.Errorf("invalid transform spec format, expected 'name:params' or 'key=value', got: %s", spec)
	}
	key := strings.TrimSpace(kv[0])
	entry, ok := shorthand[key]
	if !ok {
		return nil, fmt.Errorf("unknown assumption %q", key)
	}

	params := map[string]string{entry.param: strings.TrimSpace(kv[1])}
	for k, v := range entry.fixed {
		params[k] = v
	}
	return r.Create(entry.transform, params)
}

// ParseTransformList parses a semicolon-separated list of transform specs
func (r *TransformRegistry) ParseTransformList(specs string) ([]ScenarioTransform, error) {
	var transforms []ScenarioTransform
	for _, spec := range strings.Split(specs, ";") {
		if strings.TrimSpace(spec) == "" {
			continue
		}
		t, err := r.ParseTransformSpec(spec)
		if err != nil {
			return nil, err
		}
		transforms = append(transforms, t)
	}
	return transforms, nil
}

// Factory functions for each transform

func decimalParam(params map[string]string, transform, key string) (decimal.Decimal, error) {
	raw, ok := params[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("%s requires '%s' parameter", transform, key)
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return value, nil
}

func intParam(params map[string]string, transform, key string) (int, error) {
	raw, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("%s requires '%s' parameter", transform, key)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return value, nil
}

func createAdjustLandPrice(params map[string]string) (ScenarioTransform, error) {
	price, err := decimalParam(params, "adjust_land_price", "price")
	if err != nil {
		return nil, err
	}
	return &AdjustLandPrice{Price: price}, nil
}

func createScaleSalePrices(params map[string]string) (ScenarioTransform, error) {
	pct, err := decimalParam(params, "scale_sale_prices", "pct")
	if err != nil {
		return nil, err
	}
	return &ScaleSalePrices{Percent: pct}, nil
}

func createScaleRents(params map[string]string) (ScenarioTransform, error) {
	pct, err := decimalParam(params, "scale_rents", "pct")
	if err != nil {
		return nil, err
	}
	return &ScaleRents{Percent: pct}, nil
}

func createScaleConstructionCosts(params map[string]string) (ScenarioTransform, error) {
	pct, err := decimalParam(params, "scale_construction_costs", "pct")
	if err != nil {
		return nil, err
	}
	return &ScaleConstructionCosts{Percent: pct}, nil
}

func createSetEscalation(params map[string]string) (ScenarioTransform, error) {
	category, ok := params["category"]
	if !ok {
		return nil, fmt.Errorf("set_escalation requires 'category' parameter")
	}
	rate, err := decimalParam(params, "set_escalation", "rate")
	if err != nil {
		return nil, err
	}
	return &SetEscalation{Category: domain.CostCategory(category), Rate: rate}, nil
}

func createSetStrategy(params map[string]string) (ScenarioTransform, error) {
	strategy, ok := params["strategy"]
	if !ok {
		return nil, fmt.Errorf("set_strategy requires 'strategy' parameter")
	}

	t := &SetStrategy{Strategy: domain.Strategy(strategy)}
	if raw, ok := params["yield"]; ok {
		yield, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid yield value: %w", err)
		}
		t.RentYield = yield
	}
	return t, nil
}

func createDelayConstruction(params map[string]string) (ScenarioTransform, error) {
	months, err := intParam(params, "delay_construction", "months")
	if err != nil {
		return nil, err
	}
	return &DelayConstruction{Months: months}, nil
}

func createShiftSettlement(params map[string]string) (ScenarioTransform, error) {
	months, err := intParam(params, "shift_settlement", "months")
	if err != nil {
		return nil, err
	}
	return &ShiftSettlement{Months: months}, nil
}

func createAdjustInterestRate(params map[string]string) (ScenarioTransform, error) {
	tier, ok := params["tier"]
	if !ok {
		return nil, fmt.Errorf("adjust_interest_rate requires 'tier' parameter")
	}
	delta, err := decimalParam(params, "adjust_interest_rate", "delta")
	if err != nil {
		return nil, err
	}
	return &AdjustInterestRate{Tier: domain.FundingSource(tier), Delta: delta}, nil
}
