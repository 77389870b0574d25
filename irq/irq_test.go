package irq

import "testing"

func TestLevelStaysRaisedUntilCleared(t *testing.T) {
	var l Level
	l.Raise()
	if !l.Raised() {
		t.Fatal("expected Raised after Raise")
	}
	if !l.Raised() {
		t.Fatal("level latch should stay raised across repeated polls")
	}
	l.Clear()
	if l.Raised() {
		t.Fatal("expected not Raised after Clear")
	}
}

func TestEdgeClearsOnServiceNotOnPoll(t *testing.T) {
	var e Edge
	e.Raise()
	if !e.Raised() {
		t.Fatal("expected Raised after Raise")
	}
	if !e.Raised() {
		t.Fatal("edge latch should stay armed across repeated polls until Service")
	}
	e.Service()
	if e.Raised() {
		t.Fatal("expected not Raised after Service")
	}
}

func TestEdgeRequiresFreshRaiseAfterService(t *testing.T) {
	var e Edge
	e.Raise()
	e.Service()
	if e.Raised() {
		t.Fatal("edge latch re-armed itself without a fresh Raise")
	}
	e.Raise()
	if !e.Raised() {
		t.Fatal("expected Raised after a fresh Raise")
	}
}

func TestSenderInterface(t *testing.T) {
	var _ Sender = &Level{}
	var _ Sender = &Edge{}
}
