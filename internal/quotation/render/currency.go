package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"quotegen-backend/internal/quotation/domain"
)

var printer = message.NewPrinter(language.Japanese)

// FormatYen prints a thousands-grouped yen amount. Absent values print as ¥0.
func FormatYen(n domain.Number) string {
	if n.IsInt() {
		return "¥" + printer.Sprintf("%d", n.Int64())
	}
	return "¥" + printer.Sprint(number.Decimal(n.Float64(), number.MaxFractionDigits(3)))
}
