package menuparse

import "testing"

func TestParsePrice(t *testing.T) {
	for _, tc := range []struct {
		name  string
		token string
		want  float64
		null  bool
	}{
		{name: "plain integer", token: "250", want: 250},
		{name: "decimal", token: "12.99", want: 12.99},
		{name: "dollar", token: "$12.99", want: 12.99},
		{name: "rupee with thousands separator", token: "₹1,250", want: 1250},
		{name: "euro", token: "€8.50", want: 8.5},
		{name: "range takes lower bound", token: "250-350", want: 250},
		{name: "currency range", token: "₹100-150", want: 100},
		{name: "surrounding text", token: "Rs 99 only", want: 99},
		{name: "trailing dot", token: "20.", want: 20},
		{name: "empty", token: "", null: true},
		{name: "whitespace", token: "   ", null: true},
		{name: "market price", token: "MP", null: true},
		{name: "words only", token: "Market Price", null: true},
		{name: "lone hyphen", token: "-", null: true},
		{name: "range with empty lower bound", token: "-150", null: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := ParsePrice(tc.token)
			if tc.null {
				if got != nil {
					t.Fatalf("ParsePrice(%q) = %v, want nil", tc.token, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParsePrice(%q) = nil, want %v", tc.token, tc.want)
			}
			if *got != tc.want {
				t.Fatalf("ParsePrice(%q) = %v, want %v", tc.token, *got, tc.want)
			}
		})
	}
}

func TestParsePriceIsPure(t *testing.T) {
	a := ParsePrice("₹1,250")
	b := ParsePrice("₹1,250")
	if a == nil || b == nil || *a != *b {
		t.Fatal("same input must yield same output")
	}
}

func TestParsePriceValue(t *testing.T) {
	if got := ParsePriceValue(float64(150)); got == nil || *got != 150 {
		t.Fatalf("number value: got %v", got)
	}
	if got := ParsePriceValue("$20/30"); got == nil || *got != 20 {
		t.Fatalf("string value: got %v", got)
	}
	if got := ParsePriceValue(nil); got != nil {
		t.Fatalf("nil value: got %v", *got)
	}
	if got := ParsePriceValue(true); got != nil {
		t.Fatalf("bool value: got %v", *got)
	}
}
