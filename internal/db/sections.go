package db

import (
	"context"
	"fmt"

	"github.com/Joseda-hg/taskboard/internal/model"
)

const sectionColumns = "id_section, title_section, id_user"

func scanSection(row interface{ Scan(...any) error }) (model.Section, error) {
	var section model.Section
	if err := row.Scan(&section.ID, &section.Title, &section.UserID); err != nil {
		return model.Section{}, err
	}
	return section, nil
}

func (s *Store) ListSections(ctx context.Context, userID int64) ([]model.Section, error) {
	rows, err := s.query(ctx, "SELECT "+sectionColumns+" FROM sections WHERE id_user = ? ORDER BY id_section", userID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	sections := []model.Section{}
	for rows.Next() {
		section, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, section)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

func (s *Store) CreateSection(ctx context.Context, userID int64, title string) (model.Section, error) {
	section, err := scanSection(s.queryRow(ctx,
		"INSERT INTO sections (title_section, id_user) VALUES (?, ?) RETURNING "+sectionColumns,
		title, userID))
	if err != nil {
		return model.Section{}, fmt.Errorf("create section: %w", err)
	}
	return section, nil
}

func (s *Store) UpdateSection(ctx context.Context, userID, sectionID int64, title string) (model.Section, error) {
	section, err := scanSection(s.queryRow(ctx,
		"UPDATE sections SET title_section = ? WHERE id_section = ? AND id_user = ? RETURNING "+sectionColumns,
		title, sectionID, userID))
	if err != nil {
		return model.Section{}, notFound(err, "update section %d", sectionID)
	}
	return section, nil
}

// DeleteSection removes the section and, through the foreign key, its tasks.
func (s *Store) DeleteSection(ctx context.Context, userID, sectionID int64) error {
	result, err := s.exec(ctx, "DELETE FROM sections WHERE id_section = ? AND id_user = ?", sectionID, userID)
	if err != nil {
		return fmt.Errorf("delete section %d: %w", sectionID, err)
	}
	return expectAffected(result, "delete section %d", sectionID)
}

func expectAffected(result interface{ RowsAffected() (int64, error) }, format string, args ...any) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
	}
	return nil
}
