package entity

// ProductFilter selects products for a search. Name takes precedence over Search.
type ProductFilter struct {
	Name   string // exact match
	Search string // case-insensitive substring of name
}
