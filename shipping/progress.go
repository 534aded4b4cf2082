// Package shipping derives the free-shipping banner from a cart subtotal.
// Nothing here is stored; every value is recomputed from the current cart snapshot.
package shipping

import "github.com/shopspring/decimal"

// DefaultGoal is the subtotal at which shipping becomes free.
var DefaultGoal = decimal.NewFromInt(200)

var hundred = decimal.NewFromInt(100)

// Progress is the derived state of the free-shipping banner.
type Progress struct {
	Subtotal  decimal.Decimal
	Goal      decimal.Decimal
	Remaining decimal.Decimal // zero once unlocked
	Percent   float64
	Unlocked  bool
}

// Percent returns min(subtotal/goal*100, 100). A non-positive goal is always reached.
func Percent(subtotal, goal decimal.Decimal) float64 {
	if !goal.IsPositive() {
		return 100
	}
	if subtotal.IsNegative() {
		subtotal = decimal.Zero
	}
	pct := decimal.Min(subtotal.Div(goal).Mul(hundred), hundred)
	return pct.InexactFloat64()
}

// Unlocked reports whether subtotal has reached goal.
func Unlocked(subtotal, goal decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(goal)
}

// Compute builds the full banner state for subtotal against goal.
func Compute(subtotal, goal decimal.Decimal) Progress {
	p := Progress{
		Subtotal: subtotal,
		Goal:     goal,
		Percent:  Percent(subtotal, goal),
		Unlocked: Unlocked(subtotal, goal),
	}
	if !p.Unlocked {
		p.Remaining = goal.Sub(subtotal)
	} else {
		p.Remaining = decimal.Zero
	}
	return p
}
