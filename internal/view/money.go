package view

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Amount formats d with thousands separators and at most two decimals,
// e.g. "8,500" or "1,999.5".
func Amount(d decimal.Decimal) string {
	if d.IsInteger() {
		return printer.Sprintf("%v", number.Decimal(d.IntPart()))
	}
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("%v", number.Decimal(f, number.MaxFractionDigits(2)))
}

// Money formats d as rupees, e.g. "Rs. 8,500".
func Money(d decimal.Decimal) string {
	return "Rs. " + Amount(d)
}
