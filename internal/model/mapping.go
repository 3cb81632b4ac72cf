package model

import "github.com/shopspring/decimal"

// UnassignedSentinel marks deposit-mapping rows whose property is deliberately
// undecided. Comparison is case- and surrounding-space-insensitive.
const UnassignedSentinel = "UNASSIGNED"

// PropertyMapping is one row of the curated deposit_amount_map.csv reference
// table: a normalized memo plus an exact credit amount identifies a property.
type PropertyMapping struct {
	Memo         string
	CreditAmount decimal.Decimal
	PropertyName string
	Notes        string
}
