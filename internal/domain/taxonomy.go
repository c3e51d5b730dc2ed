package domain

// Category and priority values used by the default taxonomy.
const (
	CategoryNetworking   = "networking"
	CategoryHardware     = "hardware"
	CategoryMicrosoft365 = "microsoft 365"
	CategorySoftware     = "software"
	CategorySecurity     = "security"
	CategoryOther        = "other"

	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// Taxonomy is the fixed, ordered set of categories and priorities a ticket may carry.
// The zero value is empty; build one with DefaultTaxonomy or NewTaxonomy.
type Taxonomy struct {
	categories []string
	priorities []string
}

// NewTaxonomy copies the supplied values so later mutation of the slices has no effect.
func NewTaxonomy(categories, priorities []string) Taxonomy {
	return Taxonomy{
		categories: append([]string(nil), categories...),
		priorities: append([]string(nil), priorities...),
	}
}

// DefaultTaxonomy returns the help-desk taxonomy.
func DefaultTaxonomy() Taxonomy {
	return NewTaxonomy(
		[]string{CategoryNetworking, CategoryHardware, CategoryMicrosoft365, CategorySoftware, CategorySecurity, CategoryOther},
		[]string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical},
	)
}

// Categories returns the categories in declaration order.
func (t Taxonomy) Categories() []string {
	return append([]string(nil), t.categories...)
}

// Priorities returns the priorities in declaration order.
func (t Taxonomy) Priorities() []string {
	return append([]string(nil), t.priorities...)
}

// HasCategory reports whether category is an exact member of the taxonomy.
func (t Taxonomy) HasCategory(category string) bool {
	return contains(t.categories, category)
}

// HasPriority reports whether priority is an exact member of the taxonomy. Matching is case-sensitive.
func (t Taxonomy) HasPriority(priority string) bool {
	return contains(t.priorities, priority)
}

func contains(values []string, candidate string) bool {
	for _, v := range values {
		if v == candidate {
			return true
		}
	}
	return false
}
