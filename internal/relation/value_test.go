package relation

import "testing"

// TestFormatValue pins value canonicalization across the scalar types the
// parsers produce.
func TestFormatValue(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"  padded  ", "padded"},
		{"", ""},
		{true, "true"},
		{false, "false"},
		{int64(42), "42"},
		{7, "7"},
		{3.5, "3.5"},
	}
	for _, tc := range cases {
		if got := FormatValue(tc.in); got != tc.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
