package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "S/."

// FormatMoney renders amount with two decimals, independent of locale.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%s %.2f", CurrencySymbol, amount)
}

// FormatDate turns "2024-01-05" into "05/01/2024". Input that does not look
// like an ISO date is returned as is.
func FormatDate(date string) string {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return date
	}
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			return date
		}
	}
	return fmt.Sprintf("%s/%s/%s", padTwo(parts[2]), padTwo(parts[1]), parts[0])
}

func padTwo(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
