package env

import "testing"

func TestGetFallsBackWhenUnset(t *testing.T) {
	if got := Get("STOREFRONT_TEST_UNSET_KEY", "default"); got != "default" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestGetFallsBackWhenBlank(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_BLANK_KEY", "   ")
	if got := Get("STOREFRONT_TEST_BLANK_KEY", "default"); got != "default" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
}

func TestGetTrimsValue(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_SET_KEY", " console ")
	if got := Get("STOREFRONT_TEST_SET_KEY", "json"); got != "console" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
}
