package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/meeting-poll/internal/persistence"
)

var (
	_ persistence.SessionRepository = (*SessionRepository)(nil)
	_ persistence.StatsReader       = (*SessionRepository)(nil)
)

// SessionRepository stores whole session aggregates. A session, its
// timeslots, their votes, and the voter records are written in one
// transaction; SaveSession replaces the aggregate's child rows wholesale,
// which keeps the write path simple at the cost of rewriting unchanged rows.
type SessionRepository struct {
	pool *ConnectionPool
}

// NewSessionRepository creates a SQLite-backed session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// CreateSession inserts a new aggregate. A colliding id reports
// persistence.ErrDuplicate so the caller can regenerate.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) error {
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("%w: session id is required", persistence.ErrConstraintViolation)
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (id, title, creator_name, shape, rules_date, rules_min_time, rules_max_time, rules_allowed_days, created_at, expires_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			session.ID,
			session.Title,
			session.CreatorName,
			session.Shape,
			formatTimePtr(session.Rules.Date),
			session.Rules.MinTime,
			session.Rules.MaxTime,
			encodeDays(session.Rules.AllowedDays),
			formatTime(session.CreatedAt),
			formatTimePtr(session.ExpiresAt),
		)
		if err != nil {
			return mapError(err)
		}
		return r.insertChildren(ctx, tx, session)
	})
}

// SaveSession persists the current state of an existing aggregate.
func (r *SessionRepository) SaveSession(ctx context.Context, session persistence.Session) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE sessions
			SET title = ?, creator_name = ?, shape = ?, rules_date = ?, rules_min_time = ?, rules_max_time = ?, rules_allowed_days = ?, created_at = ?, expires_at = ?
			WHERE id = ?`,
			session.Title,
			session.CreatorName,
			session.Shape,
			formatTimePtr(session.Rules.Date),
			session.Rules.MinTime,
			session.Rules.MaxTime,
			encodeDays(session.Rules.AllowedDays),
			formatTime(session.CreatedAt),
			formatTimePtr(session.ExpiresAt),
			session.ID,
		)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		// Votes cascade with their timeslots.
		if _, err := tx.ExecContext(ctx, `DELETE FROM timeslots WHERE session_id = ?`, session.ID); err != nil {
			return mapError(err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM voters WHERE session_id = ?`, session.ID); err != nil {
			return mapError(err)
		}
		return r.insertChildren(ctx, tx, session)
	})
}

// GetSession loads a full aggregate by id.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	var (
		session     persistence.Session
		rulesDate   sql.NullString
		allowedDays string
		createdAt   string
		expiresAt   sql.NullString
	)

	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, title, creator_name, shape, rules_date, rules_min_time, rules_max_time, rules_allowed_days, created_at, expires_at
		FROM sessions
		WHERE id = ?`, id).Scan(
		&session.ID,
		&session.Title,
		&session.CreatorName,
		&session.Shape,
		&rulesDate,
		&session.Rules.MinTime,
		&session.Rules.MaxTime,
		&allowedDays,
		&createdAt,
		&expiresAt,
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}

	if session.Rules.Date, err = parseTimePtr(rulesDate); err != nil {
		return persistence.Session{}, fmt.Errorf("parse rules_date: %w", err)
	}
	if session.Rules.AllowedDays, err = decodeDays(allowedDays); err != nil {
		return persistence.Session{}, fmt.Errorf("parse rules_allowed_days: %w", err)
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Session{}, fmt.Errorf("parse created_at: %w", err)
	}
	if session.ExpiresAt, err = parseTimePtr(expiresAt); err != nil {
		return persistence.Session{}, fmt.Errorf("parse expires_at: %w", err)
	}

	if session.Timeslots, err = r.loadTimeslots(ctx, id); err != nil {
		return persistence.Session{}, err
	}
	if session.Voters, err = r.loadVoters(ctx, id); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

// SessionExists reports whether a session id is taken.
func (r *SessionRepository) SessionExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.pool.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, mapError(err)
	}
	return true, nil
}

// Stats counts sessions, timeslots, and votes across the whole database.
func (r *SessionRepository) Stats(ctx context.Context) (persistence.Stats, error) {
	var stats persistence.Stats
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM sessions),
			(SELECT COUNT(*) FROM timeslots),
			(SELECT COUNT(*) FROM votes)`).Scan(
		&stats.TotalSessions,
		&stats.TotalTimeslots,
		&stats.TotalVotes,
	)
	if err != nil {
		return persistence.Stats{}, mapError(err)
	}
	return stats, nil
}

func (r *SessionRepository) insertChildren(ctx context.Context, tx *sql.Tx, session persistence.Session) error {
	for _, slot := range session.Timeslots {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO timeslots (id, session_id, start_utc, end_utc, created_by, password_hash, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			slot.ID,
			session.ID,
			formatTime(slot.Start),
			formatTime(slot.End),
			slot.CreatedBy,
			slot.PasswordHash,
			slot.Position,
		)
		if err != nil {
			return mapError(err)
		}
		for _, vote := range slot.Votes {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO votes (id, timeslot_id, voter_name, note, cast_at)
				VALUES (?, ?, ?, ?, ?)`,
				vote.ID,
				slot.ID,
				vote.VoterName,
				vote.Note,
				formatTime(vote.CastAt),
			)
			if err != nil {
				return mapError(err)
			}
		}
	}

	for _, voter := range session.Voters {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO voters (session_id, name, password_hash, joined_at)
			VALUES (?, ?, ?, ?)`,
			session.ID,
			voter.Name,
			voter.PasswordHash,
			formatTime(voter.JoinedAt),
		)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r *SessionRepository) loadTimeslots(ctx context.Context, sessionID string) ([]persistence.Timeslot, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, start_utc, end_utc, created_by, password_hash, position
		FROM timeslots
		WHERE session_id = ?
		ORDER BY position`, sessionID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var slots []persistence.Timeslot
	for rows.Next() {
		var (
			slot     persistence.Timeslot
			startUTC string
			endUTC   string
		)
		if err := rows.Scan(&slot.ID, &startUTC, &endUTC, &slot.CreatedBy, &slot.PasswordHash, &slot.Position); err != nil {
			return nil, err
		}
		if slot.Start, err = parseTime(startUTC); err != nil {
			return nil, fmt.Errorf("parse start_utc: %w", err)
		}
		if slot.End, err = parseTime(endUTC); err != nil {
			return nil, fmt.Errorf("parse end_utc: %w", err)
		}
		slot.SessionID = sessionID
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range slots {
		if slots[i].Votes, err = r.loadVotes(ctx, slots[i].ID); err != nil {
			return nil, err
		}
	}
	return slots, nil
}

func (r *SessionRepository) loadVotes(ctx context.Context, timeslotID string) ([]persistence.Vote, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, voter_name, note, cast_at
		FROM votes
		WHERE timeslot_id = ?
		ORDER BY cast_at, id`, timeslotID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var votes []persistence.Vote
	for rows.Next() {
		var (
			vote   persistence.Vote
			castAt string
		)
		if err := rows.Scan(&vote.ID, &vote.VoterName, &vote.Note, &castAt); err != nil {
			return nil, err
		}
		if vote.CastAt, err = parseTime(castAt); err != nil {
			return nil, fmt.Errorf("parse cast_at: %w", err)
		}
		vote.TimeslotID = timeslotID
		votes = append(votes, vote)
	}
	return votes, rows.Err()
}

func (r *SessionRepository) loadVoters(ctx context.Context, sessionID string) ([]persistence.Voter, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT name, password_hash, joined_at
		FROM voters
		WHERE session_id = ?
		ORDER BY name`, sessionID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var voters []persistence.Voter
	for rows.Next() {
		var (
			voter    persistence.Voter
			joinedAt string
		)
		if err := rows.Scan(&voter.Name, &voter.PasswordHash, &joinedAt); err != nil {
			return nil, err
		}
		if voter.JoinedAt, err = parseTime(joinedAt); err != nil {
			return nil, fmt.Errorf("parse joined_at: %w", err)
		}
		voter.SessionID = sessionID
		voters = append(voters, voter)
	}
	return voters, rows.Err()
}

func encodeDays(days []int) string {
	if len(days) == 0 {
		return ""
	}
	parts := make([]string, 0, len(days))
	for _, day := range days {
		parts = append(parts, strconv.Itoa(day))
	}
	return strings.Join(parts, ",")
}

func decodeDays(encoded string) ([]int, error) {
	if encoded == "" {
		return nil, nil
	}
	parts := strings.Split(encoded, ",")
	days := make([]int, 0, len(parts))
	for _, part := range parts {
		day, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}
