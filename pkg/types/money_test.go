package types

import "testing"

func TestFormatNGN(t *testing.T) {
	cases := map[int64]string{
		0:       "₦0",
		500:     "₦500",
		6500:    "₦6,500",
		13500:   "₦13,500",
		1234567: "₦1,234,567",
		-12200:  "-₦12,200",
		100000:  "₦100,000",
	}
	for amount, want := range cases {
		if got := FormatNGN(amount); got != want {
			t.Fatalf("FormatNGN(%d) = %q, want %q", amount, got, want)
		}
	}
}
