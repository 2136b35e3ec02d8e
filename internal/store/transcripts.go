package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type TranscriptEntry struct {
	ID        int64
	SessionID string
	Role      string
	Content   string
	Source    string
	CreatedAt time.Time
}

func (s *Store) AppendTranscript(ctx context.Context, entry TranscriptEntry) error {
	sessionID := strings.TrimSpace(entry.SessionID)
	if sessionID == "" {
		return fmt.Errorf("append transcript: session id is required")
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO transcripts (session_id, role, content, source, created_at_unix)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID,
		strings.TrimSpace(entry.Role),
		entry.Content,
		strings.TrimSpace(entry.Source),
		createdAt.UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert transcript: %w", err)
	}
	return nil
}

// ListTranscript returns a session's entries oldest first.
func (s *Store) ListTranscript(ctx context.Context, sessionID string, limit int) ([]TranscriptEntry, error) {
	limit = normalizeLimit(limit, 200, 1000)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, session_id, role, content, source, created_at_unix
		 FROM transcripts
		 WHERE session_id = ?
		 ORDER BY id ASC
		 LIMIT ?`,
		strings.TrimSpace(sessionID),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list transcript: %w", err)
	}
	defer rows.Close()

	var entries []TranscriptEntry
	for rows.Next() {
		var entry TranscriptEntry
		var createdUnix int64
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Role, &entry.Content, &entry.Source, &createdUnix); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		entry.CreatedAt = time.Unix(createdUnix, 0).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcript: %w", err)
	}
	return entries, nil
}
