package main

import "testing"

func TestNeedsBody(t *testing.T) {
	cases := map[string]bool{
		"Game G":          true,
		"game G":          true,
		"Board G 1-White": false,
		"":                false,
	}
	for args, want := range cases {
		if got := needsBody(args); got != want {
			t.Fatalf("needsBody(%q) = %v, want %v", args, got, want)
		}
	}
}
