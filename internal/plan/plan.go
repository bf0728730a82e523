package plan

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownPlan    = errors.New("unknown subscription plan")
	ErrInvalidCatalog = errors.New("invalid plan catalog")
)

const (
	Pro  = "pro"
	Plus = "plus"
)

// Plan is a purchasable subscription tier. Amount is in kobo.
type Plan struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Name   string `json:"name"`
}

// Catalog is the server-side source of truth for plan pricing.
// It is built once at startup and never mutated, so it is safe for concurrent reads.
type Catalog struct {
	plans     []Plan
	byID      map[string]Plan
	defaultID string
}

func NewCatalog(defaultID string, plans ...Plan) (*Catalog, error) {
	if len(plans) == 0 {
		return nil, fmt.Errorf("%w: no plans", ErrInvalidCatalog)
	}

	c := &Catalog{
		plans:     make([]Plan, 0, len(plans)),
		byID:      make(map[string]Plan, len(plans)),
		defaultID: defaultID,
	}
	for _, p := range plans {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: plan with empty id", ErrInvalidCatalog)
		}
		if p.Amount <= 0 {
			return nil, fmt.Errorf("%w: plan %q has non-positive amount %d", ErrInvalidCatalog, p.ID, p.Amount)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate plan %q", ErrInvalidCatalog, p.ID)
		}
		c.plans = append(c.plans, p)
		c.byID[p.ID] = p
	}

	if _, ok := c.byID[defaultID]; !ok {
		return nil, fmt.Errorf("%w: default plan %q is not in the catalog", ErrInvalidCatalog, defaultID)
	}

	return c, nil
}

// Default returns the production catalog.
func Default() *Catalog {
	c, err := NewCatalog(Pro,
		Plan{ID: Pro, Amount: 150000, Name: "Pro"},
		Plan{ID: Plus, Amount: 300000, Name: "Plus"},
	)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) AmountFor(planID string) (int64, bool) {
	p, ok := c.byID[planID]
	return p.Amount, ok
}

// PlanFor maps a charged amount back to a plan id. The first plan in catalog
// order with an exactly equal amount wins; anything else maps to the default plan.
func (c *Catalog) PlanFor(amount int64) string {
	for _, p := range c.plans {
		if p.Amount == amount {
			return p.ID
		}
	}
	return c.defaultID
}

// Resolve returns the plan for planID, or the default plan when planID is empty.
func (c *Catalog) Resolve(planID string) (Plan, error) {
	if planID == "" {
		planID = c.defaultID
	}
	p, ok := c.byID[planID]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrUnknownPlan, planID)
	}
	return p, nil
}

func (c *Catalog) DefaultID() string {
	return c.defaultID
}

func (c *Catalog) Plans() []Plan {
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}
