package vuln

import "testing"

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to ScanStatus
		ok       bool
	}{
		{StatusQueued, StatusScanning, true},
		{StatusQueued, StatusCompleted, false},
		{StatusQueued, StatusFailed, false},
		{StatusScanning, StatusCompleted, true},
		{StatusScanning, StatusFailed, true},
		{StatusScanning, StatusQueued, false},
		{StatusCompleted, StatusScanning, false},
		{StatusCompleted, StatusFailed, false},
		{StatusFailed, StatusScanning, false},
		{StatusFailed, StatusCompleted, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.ok {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	if StatusQueued.Terminal() || StatusScanning.Terminal() {
		t.Error("non-terminal state reported terminal")
	}
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Error("terminal state not reported terminal")
	}
}

func TestAttackStoryValidate(t *testing.T) {
	story := AttackStory{Steps: []StoryStep{
		{Step: 1, Title: "Recon"},
		{Step: 2, Title: "Pivot"},
		{Step: 3, Title: "Exploit"},
	}}
	if err := story.Validate(); err != nil {
		t.Fatalf("contiguous story rejected: %v", err)
	}

	story.Steps[1].Step = 5
	if err := story.Validate(); err == nil {
		t.Fatal("non-contiguous story accepted")
	}

	empty := AttackStory{}
	if err := empty.Validate(); err == nil {
		t.Fatal("empty story accepted")
	}
}
