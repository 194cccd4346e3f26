package billing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// TaxRates holds the GST percentages applied to a taxable bill.
type TaxRates struct {
	CGSTPercent decimal.Decimal
	SGSTPercent decimal.Decimal
	IGSTPercent decimal.Decimal
}

// TaxBreakdown is the computed tax for one bill.
type TaxBreakdown struct {
	CGSTAmount decimal.Decimal
	SGSTAmount decimal.Decimal
	IGSTAmount decimal.Decimal
	Total      decimal.Decimal
}

// ComputeTax applies rates to the subtotal. Non-taxable bills carry zero tax
// and a total equal to the subtotal. Amounts are rounded to two places, the
// precision of the backing numeric columns.
func ComputeTax(subtotal decimal.Decimal, rates TaxRates, taxable bool) TaxBreakdown {
	if !taxable {
		return TaxBreakdown{
			CGSTAmount: decimal.Zero,
			SGSTAmount: decimal.Zero,
			IGSTAmount: decimal.Zero,
			Total:      subtotal.Round(2),
		}
	}

	cgst := subtotal.Mul(rates.CGSTPercent).Div(hundred).Round(2)
	sgst := subtotal.Mul(rates.SGSTPercent).Div(hundred).Round(2)
	igst := subtotal.Mul(rates.IGSTPercent).Div(hundred).Round(2)

	return TaxBreakdown{
		CGSTAmount: cgst,
		SGSTAmount: sgst,
		IGSTAmount: igst,
		Total:      subtotal.Add(cgst).Add(sgst).Add(igst).Round(2),
	}
}
