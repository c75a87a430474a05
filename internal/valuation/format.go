package valuation

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var displayPrinter = message.NewPrinter(language.English)

// FormatThousandsEUR renders a thousands-of-EUR amount as e.g. "1,240k EUR".
func FormatThousandsEUR(thousands int64) string {
	return displayPrinter.Sprintf("%dk EUR", thousands)
}
