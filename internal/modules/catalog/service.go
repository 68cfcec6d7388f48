package catalog

import "astrobooking/internal/domain"

// DefaultPriceMajorUnits is the flat consultation fee in INR.
const DefaultPriceMajorUnits int64 = 2999

var defaultTypes = []domain.ConsultationType{
	{ID: "career", Name: "Career & Business", Description: "Job changes, promotions, business decisions", DurationMinutes: 45, PriceMajorUnits: DefaultPriceMajorUnits},
	{ID: "relationship", Name: "Relationships & Marriage", Description: "Love life, marriage timing, compatibility", DurationMinutes: 45, PriceMajorUnits: DefaultPriceMajorUnits},
	{ID: "finance", Name: "Finance & Investments", Description: "Wealth, investments, financial planning", DurationMinutes: 45, PriceMajorUnits: DefaultPriceMajorUnits},
	{ID: "health", Name: "Health & Wellness", Description: "Health concerns, recovery, wellness guidance", DurationMinutes: 45, PriceMajorUnits: DefaultPriceMajorUnits},
	{ID: "general", Name: "General Life Guidance", Description: "Overall life direction, yearly predictions", DurationMinutes: 60, PriceMajorUnits: DefaultPriceMajorUnits},
	{ID: "remedies", Name: "Remedies & Solutions", Description: "Gemstones, mantras, rituals for specific issues", DurationMinutes: 30, PriceMajorUnits: DefaultPriceMajorUnits},
}

// Catalog is a read-only lookup of bookable consultation types.
type Catalog struct {
	ordered []domain.ConsultationType
	byID    map[string]domain.ConsultationType
}

func New(types []domain.ConsultationType) *Catalog {
	c := &Catalog{
		ordered: make([]domain.ConsultationType, len(types)),
		byID:    make(map[string]domain.ConsultationType, len(types)),
	}
	copy(c.ordered, types)
	for _, t := range types {
		c.byID[t.ID] = t
	}
	return c
}

// Default returns the catalog offered on the booking page.
func Default() *Catalog {
	return New(defaultTypes)
}

func (c *Catalog) ByID(id string) (domain.ConsultationType, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// List returns the types in display order. The slice is a copy.
func (c *Catalog) List() []domain.ConsultationType {
	out := make([]domain.ConsultationType, len(c.ordered))
	copy(out, c.ordered)
	return out
}
