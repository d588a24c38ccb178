package orderitem

import "testing"

func TestThresholdInclusiveAllowsExactStock(t *testing.T) {
	if !ThresholdInclusive.Allows(5, 5) {
		t.Fatal("inclusive threshold should allow draining stock to zero")
	}
	if !ThresholdInclusive.Allows(5, 4) {
		t.Fatal("inclusive threshold should allow below-stock requests")
	}
	if ThresholdInclusive.Allows(5, 6) {
		t.Fatal("inclusive threshold should reject above-stock requests")
	}
}

func TestThresholdExclusiveRequiresStrictMargin(t *testing.T) {
	if ThresholdExclusive.Allows(5, 5) {
		t.Fatal("exclusive threshold should reject requests equal to stock")
	}
	if !ThresholdExclusive.Allows(5, 4) {
		t.Fatal("exclusive threshold should allow strictly-below-stock requests")
	}
	if ThresholdExclusive.Allows(5, 6) {
		t.Fatal("exclusive threshold should reject above-stock requests")
	}
}

func TestDefaultPolicies(t *testing.T) {
	p := DefaultPolicies()
	if p.Create != ThresholdInclusive {
		t.Fatalf("create policy should be inclusive, got %s", p.Create)
	}
	if p.Update != ThresholdExclusive {
		t.Fatalf("update policy should be exclusive, got %s", p.Update)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("default policies should validate: %v", err)
	}
}

func TestPoliciesValidateRejectsUnknownThreshold(t *testing.T) {
	p := Policies{Create: StockThreshold(42), Update: ThresholdExclusive}
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for unknown threshold")
	}
}
