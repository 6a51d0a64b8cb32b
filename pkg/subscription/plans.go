package subscription

import "slices"

// PlanID names a subscription plan.
type PlanID string

const (
	PlanFree       PlanID = "free"
	PlanPro        PlanID = "pro"
	PlanEnterprise PlanID = "enterprise"
)

// Plan describes a purchasable tier.
type Plan struct {
	ID           PlanID   `json:"id"`
	Name         string   `json:"name"`
	Price        int      `json:"price"`
	MonthlyLimit int      `json:"monthly_limit"`
	PriceID      string   `json:"price_id,omitempty"`
	Features     []string `json:"features"`
}

var plans = []Plan{
	{
		ID:           PlanFree,
		Name:         "Free",
		Price:        0,
		MonthlyLimit: 5,
		Features:     []string{"5 researches/month", "Basic export (PDF)", "Standard AI model"},
	},
	{
		ID:           PlanPro,
		Name:         "Pro",
		Price:        19,
		MonthlyLimit: 50,
		PriceID:      "price_1Sa6pYEpWxBqC9nGjpVXdKL0",
		Features:     []string{"50 researches/month", "All export formats", "Priority AI processing", "Research history"},
	},
	{
		ID:           PlanEnterprise,
		Name:         "Enterprise",
		Price:        49,
		MonthlyLimit: 999,
		PriceID:      "price_1Sa6pkEpWxBqC9nGcV8MQDdO",
		Features:     []string{"Unlimited researches", "All export formats", "Priority support", "Custom AI prompts", "API access"},
	},
}

// Plans returns every plan, cheapest first.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	for i, p := range plans {
		p.Features = slices.Clone(p.Features)
		out[i] = p
	}
	return out
}

// LookupPlan finds a plan by id.
func LookupPlan(id PlanID) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			p.Features = slices.Clone(p.Features)
			return p, true
		}
	}
	return Plan{}, false
}
