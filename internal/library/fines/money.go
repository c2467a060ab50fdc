package fines

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usdPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatUSD renders a fine amount for advisory and receipt strings.
func FormatUSD(amount float64) string {
	return usdPrinter.Sprint(currency.Symbol(currency.USD.Amount(amount)))
}
