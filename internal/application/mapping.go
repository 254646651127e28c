package application

import (
	"fmt"
	"sort"
	"time"

	"github.com/example/meeting-poll/internal/persistence"
	"github.com/example/meeting-poll/internal/poll"
)

// buildRules turns a caller-supplied shape and payload into the domain rules
// variant, surfacing malformed payloads as field level validation errors.
func buildRules(shape string, input RulesInput) (poll.Rules, error) {
	vErr := &ValidationError{}

	switch poll.Shape(shape) {
	case poll.ShapeFixed:
		return poll.FixedRules{}, nil

	case poll.ShapeDateRange:
		minTime, maxTime := parseWindow(input, vErr)
		if input.Date == nil {
			vErr.add("date", "date is required")
		}
		if vErr.HasErrors() {
			return nil, vErr
		}
		rules, err := poll.NewDateRangeRules(*input.Date, minTime, maxTime)
		if err != nil {
			vErr.add("rules", err.Error())
			return nil, vErr
		}
		return rules, nil

	case poll.ShapeWeekly:
		minTime, maxTime := parseWindow(input, vErr)
		if len(input.AllowedDays) == 0 {
			vErr.add("allowed_days", "at least one weekday is required")
		}
		if vErr.HasErrors() {
			return nil, vErr
		}
		rules, err := poll.NewWeeklyRules(input.AllowedDays, minTime, maxTime)
		if err != nil {
			vErr.add("rules", err.Error())
			return nil, vErr
		}
		return rules, nil

	default:
		vErr.add("type", fmt.Sprintf("unknown session type %q", shape))
		return nil, vErr
	}
}

func parseWindow(input RulesInput, vErr *ValidationError) (poll.MinuteOfDay, poll.MinuteOfDay) {
	minTime, err := poll.ParseMinuteOfDay(input.MinTime)
	if err != nil {
		vErr.add("min_time", "must be a wall-clock time HH:MM")
	}
	maxTime, err := poll.ParseMinuteOfDay(input.MaxTime)
	if err != nil {
		vErr.add("max_time", "must be a wall-clock time HH:MM")
	}
	return minTime, maxTime
}

// toRecord flattens the aggregate into its persistence record.
func toRecord(session *poll.Session) persistence.Session {
	record := persistence.Session{
		ID:          session.ID,
		Title:       session.Title,
		CreatorName: session.CreatorName,
		Shape:       string(session.Rules.Shape()),
		CreatedAt:   session.CreatedAt,
		ExpiresAt:   cloneTime(session.ExpiresAt),
	}

	switch rules := session.Rules.(type) {
	case poll.DateRangeRules:
		date := rules.Date
		record.Rules = persistence.RulesPayload{
			Date:    &date,
			MinTime: rules.MinTime.String(),
			MaxTime: rules.MaxTime.String(),
		}
	case poll.WeeklyRules:
		days := make([]int, 0, len(rules.AllowedDays))
		for _, day := range rules.AllowedDays {
			days = append(days, int(day))
		}
		record.Rules = persistence.RulesPayload{
			MinTime:     rules.MinTime.String(),
			MaxTime:     rules.MaxTime.String(),
			AllowedDays: days,
		}
	}

	for i, slot := range session.Timeslots {
		stored := persistence.Timeslot{
			ID:           slot.ID,
			SessionID:    session.ID,
			Start:        slot.Range.Start(),
			End:          slot.Range.End(),
			CreatedBy:    slot.CreatedBy,
			PasswordHash: slot.PasswordHash,
			Position:     i,
		}
		for _, vote := range slot.Votes {
			stored.Votes = append(stored.Votes, persistence.Vote{
				ID:         vote.ID,
				TimeslotID: slot.ID,
				VoterName:  vote.VoterName,
				Note:       vote.Note,
				CastAt:     vote.CastAt,
			})
		}
		record.Timeslots = append(record.Timeslots, stored)
	}

	names := make([]string, 0, len(session.Voters))
	for name := range session.Voters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		voter := session.Voters[name]
		record.Voters = append(record.Voters, persistence.Voter{
			SessionID:    session.ID,
			Name:         voter.Name,
			PasswordHash: voter.PasswordHash,
			JoinedAt:     voter.JoinedAt,
		})
	}

	return record
}

// toAggregate rebuilds the domain aggregate from its persistence record.
func toAggregate(record persistence.Session) (*poll.Session, error) {
	rules, err := rulesFromRecord(record)
	if err != nil {
		return nil, err
	}

	session := &poll.Session{
		ID:          record.ID,
		Title:       record.Title,
		CreatorName: record.CreatorName,
		Rules:       rules,
		CreatedAt:   record.CreatedAt,
		ExpiresAt:   cloneTime(record.ExpiresAt),
		Voters:      make(map[string]*poll.Voter, len(record.Voters)),
	}

	slots := append([]persistence.Timeslot(nil), record.Timeslots...)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Position < slots[j].Position })
	for _, stored := range slots {
		timeRange, err := poll.NewTimeRange(stored.Start, stored.End)
		if err != nil {
			return nil, fmt.Errorf("session %s timeslot %s: %w", record.ID, stored.ID, err)
		}
		slot := &poll.Timeslot{
			ID:           stored.ID,
			Range:        timeRange,
			CreatedBy:    stored.CreatedBy,
			PasswordHash: stored.PasswordHash,
		}
		for _, vote := range stored.Votes {
			slot.Votes = append(slot.Votes, poll.Vote{
				ID:        vote.ID,
				VoterName: vote.VoterName,
				Note:      vote.Note,
				CastAt:    vote.CastAt,
			})
		}
		session.Timeslots = append(session.Timeslots, slot)
	}

	for _, stored := range record.Voters {
		session.Voters[stored.Name] = &poll.Voter{
			Name:         stored.Name,
			PasswordHash: stored.PasswordHash,
			JoinedAt:     stored.JoinedAt,
		}
	}

	return session, nil
}

func rulesFromRecord(record persistence.Session) (poll.Rules, error) {
	switch poll.Shape(record.Shape) {
	case poll.ShapeFixed:
		return poll.FixedRules{}, nil

	case poll.ShapeDateRange:
		if record.Rules.Date == nil {
			return nil, fmt.Errorf("session %s: date range rules missing date", record.ID)
		}
		minTime, maxTime, err := parseStoredWindow(record)
		if err != nil {
			return nil, err
		}
		return poll.NewDateRangeRules(*record.Rules.Date, minTime, maxTime)

	case poll.ShapeWeekly:
		minTime, maxTime, err := parseStoredWindow(record)
		if err != nil {
			return nil, err
		}
		days := make([]time.Weekday, 0, len(record.Rules.AllowedDays))
		for _, day := range record.Rules.AllowedDays {
			days = append(days, time.Weekday(day))
		}
		return poll.NewWeeklyRules(days, minTime, maxTime)

	default:
		return nil, fmt.Errorf("session %s: unknown shape %q", record.ID, record.Shape)
	}
}

func parseStoredWindow(record persistence.Session) (poll.MinuteOfDay, poll.MinuteOfDay, error) {
	minTime, err := poll.ParseMinuteOfDay(record.Rules.MinTime)
	if err != nil {
		return 0, 0, fmt.Errorf("session %s: %w", record.ID, err)
	}
	maxTime, err := poll.ParseMinuteOfDay(record.Rules.MaxTime)
	if err != nil {
		return 0, 0, fmt.Errorf("session %s: %w", record.ID, err)
	}
	return minTime, maxTime, nil
}

// toSessionView converts the domain projection into the transport DTO.
func toSessionView(session *poll.Session) SessionView {
	projection := session.Projection()

	view := SessionView{
		ID:           projection.ID,
		Title:        projection.Title,
		CreatorName:  projection.CreatorName,
		Shape:        string(projection.Shape),
		RulesSummary: projection.RulesSummary,
		CreatedAt:    projection.CreatedAt,
		ExpiresAt:    projection.ExpiresAt,
		Timeslots:    make([]TimeslotView, 0, len(projection.Timeslots)),
	}

	switch rules := session.Rules.(type) {
	case poll.DateRangeRules:
		date := rules.Date
		view.Rules = RulesInput{Date: &date, MinTime: rules.MinTime.String(), MaxTime: rules.MaxTime.String()}
	case poll.WeeklyRules:
		view.Rules = RulesInput{
			MinTime:     rules.MinTime.String(),
			MaxTime:     rules.MaxTime.String(),
			AllowedDays: append([]time.Weekday(nil), rules.AllowedDays...),
		}
	}

	for _, slot := range projection.Timeslots {
		slotView := TimeslotView{
			ID:        slot.ID,
			Start:     slot.Start,
			End:       slot.End,
			CreatedBy: slot.CreatedBy,
			VoteCount: slot.VoteCount,
			Votes:     make([]VoteView, 0, len(slot.Votes)),
		}
		for _, vote := range slot.Votes {
			slotView.Votes = append(slotView.Votes, VoteView{VoterName: vote.VoterName, Note: vote.Note, CastAt: vote.CastAt})
		}
		view.Timeslots = append(view.Timeslots, slotView)
	}

	return view
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
