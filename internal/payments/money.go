package payments

import "github.com/shopspring/decimal"

// centsPerUnit converts a decimal dollar amount to Stripe's integer cents.
var centsPerUnit = decimal.NewFromInt(100)
