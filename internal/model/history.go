package model

// HistoryRecord holds the lifetime statistics of one player.
// JSON field names match the on-disk history document.
type HistoryRecord struct {
	PlayerID      PlayerID `json:"-"`
	Wins          int      `json:"wins"`
	Losses        int      `json:"losses"`
	Draws         int      `json:"draws"`
	MaxStreak     int      `json:"max_streak"`
	CurrentStreak int      `json:"current_streak"`
	LastResult    *Outcome `json:"last_result"`
}

// Games returns the total number of recorded games
func (r HistoryRecord) Games() int {
	return r.Wins + r.Losses + r.Draws
}

// Last returns the last recorded outcome, or OutcomeNone
func (r HistoryRecord) Last() Outcome {
	if r.LastResult == nil {
		return OutcomeNone
	}
	return *r.LastResult
}

// Apply folds one outcome into the record.
// Draws reset the current streak just like losses.
func (r *HistoryRecord) Apply(outcome Outcome) {
	switch outcome {
	case OutcomeWin:
		r.Wins++
		if r.Last() == OutcomeWin {
			r.CurrentStreak++
		} else {
			r.CurrentStreak = 1
		}
		if r.CurrentStreak > r.MaxStreak {
			r.MaxStreak = r.CurrentStreak
		}
	case OutcomeLose:
		r.Losses++
		r.CurrentStreak = 0
	case OutcomeDraw:
		r.Draws++
		r.CurrentStreak = 0
	default:
		return
	}
	last := outcome
	r.LastResult = &last
}

// Clone returns a deep copy of the record
func (r HistoryRecord) Clone() HistoryRecord {
	if r.LastResult != nil {
		last := *r.LastResult
		r.LastResult = &last
	}
	return r
}
