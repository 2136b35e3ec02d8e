package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrContactNotFound = errors.New("contact message not found")

type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Message   string
	Read      bool
	CreatedAt time.Time
}

type CreateContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func (s *Store) CreateContact(ctx context.Context, input CreateContactInput) (ContactMessage, error) {
	record := ContactMessage{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Subject:   strings.TrimSpace(input.Subject),
		Message:   strings.TrimSpace(input.Message),
		CreatedAt: s.now().Truncate(time.Second),
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO contact_messages (id, name, email, subject, message, is_read, created_at_unix)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		record.ID,
		record.Name,
		record.Email,
		record.Subject,
		record.Message,
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return ContactMessage{}, fmt.Errorf("insert contact message: %w", err)
	}
	return record, nil
}

// ListContacts returns messages newest first.
func (s *Store) ListContacts(ctx context.Context, limit int) ([]ContactMessage, error) {
	limit = normalizeLimit(limit, 50, 500)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, email, subject, message, is_read, created_at_unix
		 FROM contact_messages
		 ORDER BY created_at_unix DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	var records []ContactMessage
	for rows.Next() {
		var record ContactMessage
		var isRead int
		var createdUnix int64
		if err := rows.Scan(&record.ID, &record.Name, &record.Email, &record.Subject, &record.Message, &isRead, &createdUnix); err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		record.Read = isRead == 1
		record.CreatedAt = time.Unix(createdUnix, 0).UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact messages: %w", err)
	}
	return records, nil
}

func (s *Store) MarkContactRead(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE contact_messages SET is_read = 1 WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("mark contact read: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read contact rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrContactNotFound
	}
	return nil
}
