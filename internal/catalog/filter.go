package catalog

import "strings"

// Filter returns, in catalog order, the products in category whose name
// contains query case-insensitively. Category "All" matches every product and
// an empty query matches every name.
func Filter(products []Product, category, query string) []Product {
	needle := strings.ToLower(query)
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if category != AllCategories && p.Category != category {
			continue
		}
		if !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories returns "All" followed by each distinct category in first-seen order.
func Categories(products []Product) []string {
	out := []string{AllCategories}
	seen := map[string]struct{}{}
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
