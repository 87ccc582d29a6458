package models

import "testing"

func TestCategory(t *testing.T) {
	cases := map[int]string{
		10: "A",
		20: "B",
		30: "C",
		0:  "C",
		15: "C",
		-1: "C",
	}
	for in, want := range cases {
		if got := Category(in); got != want {
			t.Errorf("Category(%d) = %q, want %q", in, got, want)
		}
	}
}
