package streak

import "testing"

func TestAdvanceConsecutiveDays(t *testing.T) {
	s := State{UserID: "u1"}

	s = Advance(s, "2025-03-10")
	if s.CurrentStreak != 1 || s.LongestStreak != 1 {
		t.Fatalf("first hit: %+v", s)
	}

	s = Advance(s, "2025-03-11")
	s = Advance(s, "2025-03-12")
	if s.CurrentStreak != 3 || s.LongestStreak != 3 {
		t.Fatalf("consecutive hits: %+v", s)
	}
}

func TestAdvanceSameDayIsNoop(t *testing.T) {
	s := Advance(State{}, "2025-03-10")
	again := Advance(s, "2025-03-10")
	if again != s {
		t.Fatalf("same-day hit changed state: %+v vs %+v", again, s)
	}
}

func TestAdvanceGapResetsToOne(t *testing.T) {
	s := State{CurrentStreak: 5, LongestStreak: 5, LastHitDate: "2025-03-10"}

	s = Advance(s, "2025-03-12")
	if s.CurrentStreak != 1 {
		t.Fatalf("expected reset to 1, got %d", s.CurrentStreak)
	}
	if s.LongestStreak != 5 {
		t.Fatalf("longest streak must survive the reset, got %d", s.LongestStreak)
	}
}

func TestAdvanceAcrossMonthBoundary(t *testing.T) {
	s := State{CurrentStreak: 2, LongestStreak: 2, LastHitDate: "2025-02-28"}

	s = Advance(s, "2025-03-01")
	if s.CurrentStreak != 3 {
		t.Fatalf("month boundary should extend streak, got %d", s.CurrentStreak)
	}
}
