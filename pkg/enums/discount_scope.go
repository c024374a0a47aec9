package enums

import "fmt"

// DiscountScope identifies the specificity level a discount rule applies to.
// Resolution precedence is item, then brand, then type.
type DiscountScope string

const (
	DiscountScopeItem  DiscountScope = "item"
	DiscountScopeBrand DiscountScope = "brand"
	DiscountScopeType  DiscountScope = "type"
)

var validDiscountScopes = []DiscountScope{
	DiscountScopeItem,
	DiscountScopeBrand,
	DiscountScopeType,
}

// String implements fmt.Stringer.
func (s DiscountScope) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DiscountScope.
func (s DiscountScope) IsValid() bool {
	for _, candidate := range validDiscountScopes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDiscountScope converts raw input into a DiscountScope.
func ParseDiscountScope(value string) (DiscountScope, error) {
	for _, candidate := range validDiscountScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount scope %q", value)
}
