package console

import (
	"testing"

	authfiber "netbill.com/console/auth/fiber"
)

func TestNavigatorTracksLocation(t *testing.T) {
	nav := NewNavigator()

	if !nav.AtLogin() {
		t.Error("fresh navigator starts at the login screen")
	}

	nav.Observe("/payments")
	if nav.AtLogin() {
		t.Error("navigator should report the observed location")
	}

	nav.Observe(authfiber.LoginPath)
	if !nav.AtLogin() {
		t.Error("navigator should be back at login")
	}
}

func TestNavigatorLatchesForcedLogin(t *testing.T) {
	nav := NewNavigator()

	if nav.ConsumeForcedLogin() {
		t.Error("nothing latched yet")
	}

	nav.RedirectToLogin()
	if !nav.ConsumeForcedLogin() {
		t.Error("latched redirect should be consumed")
	}
	if nav.ConsumeForcedLogin() {
		t.Error("consume must reset the latch")
	}
}
