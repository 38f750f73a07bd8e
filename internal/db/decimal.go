package db

import "github.com/shopspring/decimal"

// dec parses a literal decimal; seed values are compile-time constants so a
// parse failure is a programming error.
func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
