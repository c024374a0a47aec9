package types

import "testing"

func TestAttributesRoundTrip(t *testing.T) {
	attrs := Attributes{"strings": float64(6), "body": "alder"}

	val, err := attrs.Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}

	var decoded Attributes
	if err := decoded.Scan(val); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if decoded["body"] != "alder" {
		t.Fatalf("unexpected body attribute %v", decoded["body"])
	}
	if decoded["strings"] != float64(6) {
		t.Fatalf("unexpected strings attribute %v", decoded["strings"])
	}
}

func TestAttributesNilValue(t *testing.T) {
	var attrs Attributes
	val, err := attrs.Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}
	if val != "{}" {
		t.Fatalf("expected empty object, got %v", val)
	}
}

func TestAttributesScanNil(t *testing.T) {
	var attrs Attributes
	if err := attrs.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) returned error: %v", err)
	}
	if attrs == nil {
		t.Fatal("expected empty map after scanning nil")
	}
}

func TestAttributesScanUnsupportedType(t *testing.T) {
	var attrs Attributes
	if err := attrs.Scan(42); err == nil {
		t.Fatal("expected error for unsupported scan type")
	}
}
