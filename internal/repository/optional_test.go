package repository

import "testing"

func TestOptionalStates(t *testing.T) {
	var unset Optional[string]
	if unset.IsSet() {
		t.Error("zero value should be unset")
	}
	if unset.Pointer() != nil {
		t.Error("unset Pointer should be nil")
	}
	if got := unset.Or("fallback"); got != "fallback" {
		t.Errorf("unset Or = %q, want fallback", got)
	}

	cleared := Clear[string]()
	if !cleared.IsSet() {
		t.Error("cleared should be set")
	}
	if cleared.Pointer() != nil {
		t.Error("cleared Pointer should be nil")
	}
	if got := cleared.Or("fallback"); got != "fallback" {
		t.Errorf("cleared Or = %q, want fallback", got)
	}

	set := Set("value")
	if !set.IsSet() {
		t.Error("set should be set")
	}
	if ptr := set.Pointer(); ptr == nil || *ptr != "value" {
		t.Errorf("set Pointer = %v, want value", ptr)
	}
	if got := set.Or("fallback"); got != "value" {
		t.Errorf("set Or = %q, want value", got)
	}
}
