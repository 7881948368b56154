package domain

import "github.com/shopspring/decimal"

// DeepCopy returns a scenario that shares no mutable state with s
func (s *Scenario) DeepCopy() *Scenario {
	if s == nil {
		return nil
	}
	out := *s
	out.Settings = s.Settings.DeepCopy()

	if s.Costs != nil {
		out.Costs = make([]LineItem, len(s.Costs))
		for i, item := range s.Costs {
			out.Costs[i] = item.DeepCopy()
		}
	}
	if s.Revenues != nil {
		out.Revenues = append([]RevenueItem(nil), s.Revenues...)
	}
	return &out
}

// DeepCopy copies a line item including its milestone map and escalation override
func (li LineItem) DeepCopy() LineItem {
	out := li
	if li.Milestones != nil {
		out.Milestones = make(map[int]decimal.Decimal, len(li.Milestones))
		for k, v := range li.Milestones {
			out.Milestones[k] = v
		}
	}
	if li.Escalation != nil {
		e := *li.Escalation
		out.Escalation = &e
	}
	return out
}

// DeepCopy copies the settings and every optional section
func (s FeasibilitySettings) DeepCopy() FeasibilitySettings {
	out := s
	if s.Escalation != nil {
		out.Escalation = make(map[CostCategory]decimal.Decimal, len(s.Escalation))
		for k, v := range s.Escalation {
			out.Escalation[k] = v
		}
	}
	if s.Hold != nil {
		h := *s.Hold
		out.Hold = &h
	}
	if s.GSTCreditLag != nil {
		lag := *s.GSTCreditLag
		out.GSTCreditLag = &lag
	}
	out.Capital = s.Capital.DeepCopy()
	return out
}

// DeepCopy copies the capital stack tiers and equity schedule
func (c CapitalStack) DeepCopy() CapitalStack {
	out := c
	out.Senior = c.Senior.deepCopy()
	out.Mezzanine = c.Mezzanine.deepCopy()
	if c.JointVenture != nil {
		jv := *c.JointVenture
		out.JointVenture = &jv
	}
	if c.Equity.Instalments != nil {
		out.Equity.Instalments = append([]Instalment(nil), c.Equity.Instalments...)
	}
	if c.Equity.AllowTopUp != nil {
		allow := *c.Equity.AllowTopUp
		out.Equity.AllowTopUp = &allow
	}
	return out
}

func (t *CapitalTier) deepCopy() *CapitalTier {
	if t == nil {
		return nil
	}
	out := *t
	if t.Schedule != nil {
		out.Schedule = append([]ScheduledRate(nil), t.Schedule...)
	}
	return &out
}
