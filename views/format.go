package views

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yashrajoria/storefront/models"
)

// formatAmount renders 1250 as "1,250" and 1250.5 as "1,250.50".
func formatAmount(d decimal.Decimal) string {
	var s string
	if d.Equal(d.Truncate(0)) {
		s = d.StringFixed(0)
	} else {
		s = d.StringFixed(2)
	}

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + frac
}

func (v *CartView) money(m models.Money) string {
	label := m.CurrencyCode
	if label == "" || label == v.cfg.LocalCurrencyCode {
		label = v.cfg.CurrencyLabel
	}
	return label + " " + formatAmount(m.Amount)
}
