package poll

import "time"

// VoteView is one recorded vote in a read projection.
type VoteView struct {
	VoterName string
	Note      string
	CastAt    time.Time
}

// TimeslotView is one candidate window with its tally.
type TimeslotView struct {
	ID        string
	Start     time.Time
	End       time.Time
	CreatedBy string
	VoteCount int
	Votes     []VoteView
}

// Projection is the read-only view of a session aggregate, suitable for
// rendering. Timeslots keep their insertion order; votes keep cast order.
type Projection struct {
	ID           string
	Title        string
	CreatorName  string
	Shape        Shape
	RulesSummary string
	CreatedAt    time.Time
	ExpiresAt    *time.Time
	Timeslots    []TimeslotView
}

// Projection renders the aggregate without mutating it. Reads never apply the
// expiry check; expired sessions stay readable.
func (s *Session) Projection() Projection {
	view := Projection{
		ID:           s.ID,
		Title:        s.Title,
		CreatorName:  s.CreatorName,
		Shape:        s.Rules.Shape(),
		RulesSummary: s.Rules.Describe(),
		CreatedAt:    s.CreatedAt,
		Timeslots:    make([]TimeslotView, 0, len(s.Timeslots)),
	}
	if s.ExpiresAt != nil {
		expires := *s.ExpiresAt
		view.ExpiresAt = &expires
	}

	for _, slot := range s.Timeslots {
		slotView := TimeslotView{
			ID:        slot.ID,
			Start:     slot.Range.Start(),
			End:       slot.Range.End(),
			CreatedBy: slot.CreatedBy,
			VoteCount: len(slot.Votes),
			Votes:     make([]VoteView, 0, len(slot.Votes)),
		}
		for _, vote := range slot.Votes {
			slotView.Votes = append(slotView.Votes, VoteView{
				VoterName: vote.VoterName,
				Note:      vote.Note,
				CastAt:    vote.CastAt,
			})
		}
		view.Timeslots = append(view.Timeslots, slotView)
	}

	return view
}
