package poll

import (
	"fmt"
	"strings"
	"time"
)

// PasswordVerifier abstracts the hash scheme protecting voter edits. The
// domain never sees plaintext storage; the application layer supplies a
// bcrypt-backed implementation.
type PasswordVerifier interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

// Vote is one voter's yes-selection of one timeslot.
type Vote struct {
	ID        string
	VoterName string
	Note      string
	CastAt    time.Time
}

// Timeslot is one concrete candidate window voters can vote on. PasswordHash,
// when set, gates removal of a voter-proposed slot.
type Timeslot struct {
	ID           string
	Range        TimeRange
	CreatedBy    string
	PasswordHash string
	Votes        []Vote
}

// Voter is the per-session identity record behind the shared-secret scheme.
// A voter who never supplied a password has an empty hash and no protection:
// anyone reusing the display name may overwrite their votes. This is the
// deliberate low-friction behavior of the system, not a security boundary.
type Voter struct {
	Name         string
	PasswordHash string
	JoinedAt     time.Time
}

// Selection references one timeslot in a vote submission.
type Selection struct {
	TimeslotID string
	Note       string
}

// Session is the aggregate consistency boundary: the session, its ordered
// timeslots, their votes, and the voter identity records. It is loaded,
// validated, mutated, and persisted as one unit.
type Session struct {
	ID          string
	Title       string
	CreatorName string
	Rules       Rules
	CreatedAt   time.Time
	ExpiresAt   *time.Time
	Timeslots   []*Timeslot
	Voters      map[string]*Voter
}

// NewSession builds a fresh aggregate, enforcing shape-specific creation rules:
// fixed sessions need at least two distinct initial timeslots, open shapes must
// start empty.
func NewSession(id, title, creatorName string, rules Rules, initial []TimeRange, idGenerator func() string, now time.Time) (*Session, error) {
	if rules == nil {
		return nil, fmt.Errorf("%w: rules are required", ErrInvalidRules)
	}

	session := &Session{
		ID:          id,
		Title:       strings.TrimSpace(title),
		CreatorName: strings.TrimSpace(creatorName),
		Rules:       rules,
		CreatedAt:   now.UTC(),
		Voters:      make(map[string]*Voter),
	}

	switch rules.Shape() {
	case ShapeFixed:
		if len(initial) < 2 {
			return nil, fmt.Errorf("%w: fixed sessions need at least two timeslots", ErrInvalidRules)
		}
		for _, candidate := range initial {
			if session.findTimeslot(candidate) != nil {
				return nil, ErrDuplicateTimeslot
			}
			session.Timeslots = append(session.Timeslots, &Timeslot{
				ID:        idGenerator(),
				Range:     candidate,
				CreatedBy: session.CreatorName,
			})
		}
	default:
		if len(initial) != 0 {
			return nil, fmt.Errorf("%w: %s sessions start without timeslots", ErrInvalidRules, rules.Shape())
		}
	}

	return session, nil
}

// Expired reports whether the session is past its expiry. Expiry is checked
// lazily by mutating operations; reads always succeed.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// ProposeTimeslot appends a voter-proposed timeslot after the shape rules
// accept it. Weekly candidates are first rebased onto the first occurrence of
// their weekday on or after the session's creation date. An exact (start, end)
// duplicate collapses into the existing slot instead of splitting votes
// across identical windows; the second return value is false in that case.
func (s *Session) ProposeTimeslot(candidate TimeRange, createdBy, passwordHash string, idGenerator func() string, now time.Time) (*Timeslot, bool, error) {
	if s.Expired(now) {
		return nil, false, ErrSessionExpired
	}

	if s.Rules.Shape() == ShapeWeekly {
		candidate = rebaseToFirstOccurrence(candidate, s.CreatedAt)
	}

	if err := s.Rules.ValidateProposal(candidate); err != nil {
		return nil, false, err
	}

	if existing := s.findTimeslot(candidate); existing != nil {
		return existing, false, nil
	}

	slot := &Timeslot{
		ID:           idGenerator(),
		Range:        candidate,
		CreatedBy:    strings.TrimSpace(createdBy),
		PasswordHash: passwordHash,
	}
	s.Timeslots = append(s.Timeslots, slot)
	return slot, true, nil
}

// RecordVotes replaces the named voter's vote set wholesale: every selected
// timeslot receives exactly one vote from the voter, and votes on timeslots
// absent from the selection are removed. The identity policy runs first; a
// stored password hash must be matched before any edit, while a first-time
// voter optionally registers one.
func (s *Session) RecordVotes(voterName, password string, selections []Selection, passwords PasswordVerifier, idGenerator func() string, now time.Time) error {
	if s.Expired(now) {
		return ErrSessionExpired
	}

	voterName = strings.TrimSpace(voterName)
	if voterName == "" {
		return ErrEmptyVoterName
	}
	if len(selections) == 0 {
		return ErrEmptySelection
	}

	selected := make(map[string]Selection, len(selections))
	for _, selection := range selections {
		if s.timeslotByID(selection.TimeslotID) == nil {
			return fmt.Errorf("%w: %s", ErrUnknownTimeslot, selection.TimeslotID)
		}
		selected[selection.TimeslotID] = selection
	}

	if err := s.authorize(voterName, password, passwords, now); err != nil {
		return err
	}

	now = now.UTC()
	for _, slot := range s.Timeslots {
		selection, wanted := selected[slot.ID]
		existing := -1
		for i, vote := range slot.Votes {
			if vote.VoterName == voterName {
				existing = i
				break
			}
		}

		switch {
		case wanted && existing >= 0:
			slot.Votes[existing].Note = selection.Note
			slot.Votes[existing].CastAt = now
		case wanted:
			slot.Votes = append(slot.Votes, Vote{
				ID:        idGenerator(),
				VoterName: voterName,
				Note:      selection.Note,
				CastAt:    now,
			})
		case existing >= 0:
			slot.Votes = append(slot.Votes[:existing], slot.Votes[existing+1:]...)
		}
	}

	return nil
}

// authorize applies the shared-secret edit policy. A stored hash demands the
// matching password; an empty submission against a protected record signals
// the caller to prompt. Records without a hash are open to overwrite by
// anyone using the same display name.
func (s *Session) authorize(voterName, password string, passwords PasswordVerifier, now time.Time) error {
	voter, ok := s.Voters[voterName]
	if !ok {
		voter = &Voter{Name: voterName, JoinedAt: now.UTC()}
		if password != "" {
			hash, err := passwords.Hash(password)
			if err != nil {
				return err
			}
			voter.PasswordHash = hash
		}
		s.Voters[voterName] = voter
		return nil
	}

	if voter.PasswordHash == "" {
		return nil
	}
	if password == "" {
		return ErrPasswordRequired
	}
	if err := passwords.Verify(voter.PasswordHash, password); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// RemoveTimeslot deletes a voter-proposed timeslot that has not collected any
// votes. A slot protected at proposal time requires the matching password.
func (s *Session) RemoveTimeslot(timeslotID, password string, passwords PasswordVerifier, now time.Time) error {
	if s.Expired(now) {
		return ErrSessionExpired
	}

	for i, slot := range s.Timeslots {
		if slot.ID != timeslotID {
			continue
		}
		if len(slot.Votes) > 0 {
			return ErrTimeslotHasVotes
		}
		if slot.PasswordHash != "" {
			if password == "" {
				return ErrPasswordRequired
			}
			if err := passwords.Verify(slot.PasswordHash, password); err != nil {
				return ErrInvalidPassword
			}
		}
		s.Timeslots = append(s.Timeslots[:i], s.Timeslots[i+1:]...)
		return nil
	}

	return fmt.Errorf("%w: %s", ErrUnknownTimeslot, timeslotID)
}

func (s *Session) findTimeslot(candidate TimeRange) *Timeslot {
	for _, slot := range s.Timeslots {
		if slot.Range.Equal(candidate) {
			return slot
		}
	}
	return nil
}

func (s *Session) timeslotByID(id string) *Timeslot {
	for _, slot := range s.Timeslots {
		if slot.ID == id {
			return slot
		}
	}
	return nil
}

func rebaseToFirstOccurrence(candidate TimeRange, createdAt time.Time) TimeRange {
	target := FirstOccurrence(candidate.Start().In(WallClockZone).Weekday(), createdAt)
	offset := target.Sub(startOfWallClockDay(candidate.Start()))
	if offset == 0 {
		return candidate
	}
	rebased, err := NewTimeRange(candidate.Start().Add(offset), candidate.End().Add(offset))
	if err != nil {
		return candidate
	}
	return rebased
}
