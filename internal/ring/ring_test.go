package ring

import "testing"

func TestAdvanceWraps(t *testing.T) {
	tests := []struct {
		pos, n, want int
	}{
		{0, 10, 1},
		{9, 10, 0},
		{4, 5, 0},
	}
	for _, tt := range tests {
		if got := Advance(tt.pos, tt.n); got != tt.want {
			t.Errorf("Advance(%d, %d) = %d, want %d", tt.pos, tt.n, got, tt.want)
		}
	}
}

func TestForwardOrder(t *testing.T) {
	// windowPosition == 2, N == 5: forward order should start at slot 3.
	var got []int
	Forward(2, 5, func(i int) bool {
		got = append(got, i)
		return true
	})
	want := []int{3, 4, 0, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestForwardStopsEarly(t *testing.T) {
	count := 0
	Forward(0, 10, func(i int) bool {
		count++
		return count < 3
	})
	if count != 3 {
		t.Fatalf("expected yield to stop after 3 calls, got %d", count)
	}
}

func TestReverseOrder(t *testing.T) {
	var got []int
	Reverse(2, 5, nil, func(i int) bool {
		got = append(got, i)
		return true
	})
	want := []int{2, 1, 0, 4, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestReverseStopsAtOutOfWindow(t *testing.T) {
	// Simulate slots 0..4 where only slots {2,1,0} are "in window".
	inWindow := func(i int) bool { return i == 2 || i == 1 || i == 0 }
	var got []int
	Reverse(2, 5, inWindow, func(i int) bool {
		got = append(got, i)
		return true
	})
	want := []int{2, 1, 0}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
