// Package ttesting carries tiny assert helpers shared by tests.
package ttesting

import (
	"testing"
	"time"
)

func AssertEqualInt(t *testing.T, name string, got, want int) {
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %d; want %d", got, want)
		}
	})
}

func AssertEqualString(t *testing.T, name string, got, want string) {
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %q; want %q", got, want)
		}
	})
}

func AssertEqualBool(t *testing.T, name string, got, want bool) {
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %v; want %v", got, want)
		}
	})
}

func AssertEqualDuration(t *testing.T, name string, got, want time.Duration) {
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %s; want %s", got, want)
		}
	})
}
