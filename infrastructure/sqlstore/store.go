// Package sqlstore reads the user directory and project memberships from the
// relational tables of the CRUD application, stored in SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"taskhub/domain"
	"taskhub/errors"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and creates the tables when missing.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveUser inserts or replaces one user row.
func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	if strings.TrimSpace(user.ID) == "" {
		return fmt.Errorf("%w: user id is required", errors.ErrInvalidPayload)
	}
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (id, display_name, email, role, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   display_name = excluded.display_name,
		   email = excluded.email,
		   role = excluded.role,
		   active = excluded.active`,
		user.ID, user.DisplayName, user.Email, string(user.Role), user.Active, toMillis(createdAt),
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (domain.User, error) {
	var (
		user      domain.User
		role      string
		active    bool
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, display_name, email, role, active, created_at FROM users WHERE id = ?`,
		userID,
	).Scan(&user.ID, &user.DisplayName, &user.Email, &role, &active, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, fmt.Errorf("%w: %s", errors.ErrUserNotFound, userID)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	user.Role = domain.Role(role)
	user.Active = active
	user.CreatedAt = fromMillis(createdAt)
	return user, nil
}

// AddMember is idempotent. The user row must exist.
func (s *Store) AddMember(ctx context.Context, userID, projectID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(projectID) == "" {
		return fmt.Errorf("%w: membership needs a user and a project", errors.ErrInvalidPayload)
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO project_members (user_id, project_id, joined_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, project_id) DO NOTHING`,
		userID, projectID, toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *Store) RemoveMember(ctx context.Context, userID, projectID string) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM project_members WHERE user_id = ? AND project_id = ?`,
		userID, projectID,
	)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

// ProjectsOf lists the projects of userID ordered by id.
func (s *Store) ProjectsOf(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT project_id FROM project_members WHERE user_id = ? ORDER BY project_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var projects []string
	for rows.Next() {
		var projectID string
		if err := rows.Scan(&projectID); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		projects = append(projects, projectID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return projects, nil
}

func (s *Store) IsMember(ctx context.Context, userID, projectID string) (bool, error) {
	var exists bool
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM project_members WHERE user_id = ? AND project_id = ?)`,
		userID, projectID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}
