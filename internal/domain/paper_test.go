package domain

import "testing"

func TestAbstractURL(t *testing.T) {
	got := AbstractURL("2401.12345v1")
	want := "https://arxiv.org/abs/2401.12345v1"
	if got != want {
		t.Errorf("AbstractURL = %q, want %q", got, want)
	}
}

func TestJoinAuthors(t *testing.T) {
	if got := JoinAuthors([]string{"Alice Chen", "Bob Diaz"}); got != "Alice Chen, Bob Diaz" {
		t.Errorf("JoinAuthors = %q", got)
	}
	if got := JoinAuthors(nil); got != "" {
		t.Errorf("JoinAuthors(nil) = %q", got)
	}
}

func TestStoreScale(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		0.85: 8.5,
		1:    10,
	}
	for in, want := range cases {
		if got := StoreScale(in); got != want {
			t.Errorf("StoreScale(%v) = %v, want %v", in, got, want)
		}
	}
}
