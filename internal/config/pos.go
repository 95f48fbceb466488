package config

import "github.com/shopspring/decimal"

// POS holds store-level business policy.
type POS struct {
	// TaxRate is the VAT rate applied to the taxable amount of every sale.
	TaxRate decimal.Decimal `env:"POS_TAX_RATE" envDefault:"0.16"`
	// LoyaltyDivisor controls loyalty accrual: one point per this many
	// currency units of sale total.
	LoyaltyDivisor decimal.Decimal `env:"POS_LOYALTY_DIVISOR" envDefault:"100"`
}
