package state

// validTransitions contains the permitted stage changes. Staying in the same stage is always allowed.
var validTransitions = map[Stage][]Stage{
	StageGreeting: {
		StageSelectingPrice,
	},
	StageSelectingPrice: {
		StageGettingLocation,
	},
	StageGettingLocation: {
		StageConfirming,
	},
	StageConfirming: {
		StageComplete,
		StageGreeting,
	},
	StageComplete: {
		StageGreeting,
	},
}

// IsTransitionAllowed reports whether moving from one stage to another is valid.
func IsTransitionAllowed(from, to Stage) bool {
	if from == to {
		_, known := validTransitions[from]
		return known
	}

	for _, stage := range validTransitions[from] {
		if stage == to {
			return true
		}
	}

	return false
}
