package model

import "strings"

// Category is one of a fixed, closed set of pantry sections.
type Category string

const (
	CategoryDairy      Category = "Dairy"
	CategoryVegetables Category = "Vegetables"
	CategoryFruits     Category = "Fruits"
	CategoryMeat       Category = "Meat"
	CategoryPantry     Category = "Pantry"
	CategoryBeverages  Category = "Beverages"
	CategorySnacks     Category = "Snacks"
	CategoryOther      Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryDairy,
	CategoryVegetables,
	CategoryFruits,
	CategoryMeat,
	CategoryPantry,
	CategoryBeverages,
	CategorySnacks,
	CategoryOther,
}

var categoryColors = map[Category]string{
	CategoryDairy:      "#3b82f6",
	CategoryVegetables: "#22c55e",
	CategoryFruits:     "#eab308",
	CategoryMeat:       "#ef4444",
	CategoryPantry:     "#a855f7",
	CategoryBeverages:  "#06b6d4",
	CategorySnacks:     "#f97316",
	CategoryOther:      "#6b7280",
}

// Valid reports whether c is a member of the closed set.
func (c Category) Valid() bool {
	_, ok := categoryColors[c]
	return ok
}

// Color returns the chart colour for c, or a neutral grey for unknown values.
func (c Category) Color() string {
	if col, ok := categoryColors[c]; ok {
		return col
	}
	return "#cccccc"
}

// ParseCategory matches s against the closed set ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}
