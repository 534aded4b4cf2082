package views

import _ "embed"

// ScriptPath is where pages load the cart script from. Hosts embedding the aside
// fragment load it themselves.
const ScriptPath = "/assets/cart.js"

//go:embed static/cart.js
var cartScript []byte

// Script returns the client script that dismisses toasts after data-dismiss-after,
// marks a submitting row busy and handles the close-aside action.
func Script() []byte {
	return cartScript
}
