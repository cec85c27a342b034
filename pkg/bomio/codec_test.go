package bomio

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ricemug/nexusbom/pkg/bom"
)

func sampleCostBreakdown() bom.CostBreakdown {
	return bom.CostBreakdown{
		ComponentID:  "A",
		MaterialCost: decimal.NewFromInt(100),
		LaborCost:    decimal.Zero,
		OverheadCost: decimal.Zero,
		TotalCost:    decimal.NewFromInt(100),
	}
}

// Textual encoding: decode(encode(x)) == x.
func TestJSONRoundTrip(t *testing.T) {
	want := sampleCostBreakdown()

	data, err := EncodeJSON(want)
	if err != nil {
		t.Fatalf("unexpected error encoding: %v", err)
	}

	var got bom.CostBreakdown
	if err := DecodeJSON(data, &got); err != nil {
		t.Fatalf("unexpected error decoding: %v", err)
	}

	if !want.TotalCost.Equal(got.TotalCost) || want.ComponentID != got.ComponentID {
		t.Fatalf("expected round-trip to preserve value, got %+v", got)
	}
}

// Binary encoding: decode(encode(x)) == x.
func TestBinaryRoundTrip(t *testing.T) {
	want := sampleCostBreakdown()

	data, err := EncodeBinary(want)
	if err != nil {
		t.Fatalf("unexpected error encoding: %v", err)
	}

	var got bom.CostBreakdown
	if err := DecodeBinary(data, &got); err != nil {
		t.Fatalf("unexpected error decoding: %v", err)
	}

	if !want.TotalCost.Equal(got.TotalCost) || want.ComponentID != got.ComponentID {
		t.Fatalf("expected round-trip to preserve value, got %+v", got)
	}
}

func TestDecodeJSONInvalidDataReturnsSerializationError(t *testing.T) {
	var v bom.CostBreakdown
	err := DecodeJSON([]byte("not json"), &v)
	if err == nil {
		t.Fatalf("expected a serialization error")
	}
}

func TestDecodeBinaryInvalidDataReturnsSerializationError(t *testing.T) {
	var v bom.CostBreakdown
	err := DecodeBinary([]byte{0xff, 0xff, 0xff}, &v)
	if err == nil {
		t.Fatalf("expected a serialization error")
	}
}
