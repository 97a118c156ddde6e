package vuln

import "fmt"

// StoryStep is one step of a reconstructed attack path.
type StoryStep struct {
	Step        int    `json:"step"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AttackStory is an ordered narrative of plausible attacker steps.
// Step numbers are contiguous starting at 1. The generation contract
// produces 3-5 steps but consumers must not assume an exact count.
type AttackStory struct {
	Steps []StoryStep `json:"attackStory"`
}

// Validate checks that step numbers are contiguous starting at 1.
func (s *AttackStory) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("attack story has no steps")
	}
	for i, step := range s.Steps {
		if step.Step != i+1 {
			return fmt.Errorf("attack story step %d has number %d, want %d", i, step.Step, i+1)
		}
	}
	return nil
}
