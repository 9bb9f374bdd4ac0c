package model

import "strings"

// FeeKey identifies a delivery fee override.
type FeeKey struct {
	District string
	City     string
}

// NewFeeKey builds a normalized key so lookups ignore case and spacing.
func NewFeeKey(district, city string) FeeKey {
	return FeeKey{
		District: strings.ToLower(strings.Join(strings.Fields(district), " ")),
		City:     strings.ToLower(strings.Join(strings.Fields(city), " ")),
	}
}
