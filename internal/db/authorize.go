package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Resource names a kind of row reachable through the ownership chain
// user → section → task.
type Resource int

const (
	ResourceSection Resource = iota + 1
	ResourceTask
)

func (r Resource) String() string {
	switch r {
	case ResourceSection:
		return "section"
	case ResourceTask:
		return "task"
	default:
		return fmt.Sprintf("resource(%d)", int(r))
	}
}

var ownershipQueries = map[Resource]string{
	ResourceSection: "SELECT 1 FROM sections WHERE id_section = ? AND id_user = ?",
	ResourceTask: `SELECT 1 FROM tasks t
		JOIN sections s ON s.id_section = t.id_section
		WHERE t.id_task = ? AND s.id_user = ?`,
}

// Authorize reports whether the resource exists and is owned by userID. A
// missing row and a row owned by someone else both report false.
func (s *Store) Authorize(ctx context.Context, kind Resource, resourceID, userID int64) (bool, error) {
	query, ok := ownershipQueries[kind]
	if !ok {
		return false, fmt.Errorf("authorize: unknown %s", kind)
	}

	var one int
	err := s.queryRow(ctx, query, resourceID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("authorize %s %d: %w", kind, resourceID, err)
	}
	return true, nil
}
