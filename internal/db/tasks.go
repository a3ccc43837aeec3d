package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Joseda-hg/taskboard/internal/model"
)

const taskColumns = "id_task, title_task, description_task, id_section"

// ownedSections restricts a task query to sections owned by the bound user.
const ownedSections = "id_section IN (SELECT id_section FROM sections WHERE id_user = ?)"

type TaskInput struct {
	Title       string
	Description *string
	SectionID   int64
}

func scanTask(row interface{ Scan(...any) error }) (model.Task, error) {
	var (
		task        model.Task
		description sql.NullString
	)
	if err := row.Scan(&task.ID, &task.Title, &description, &task.SectionID); err != nil {
		return model.Task{}, err
	}
	task.Description = stringPtr(description)
	return task, nil
}

func (s *Store) ListTasks(ctx context.Context, userID int64) ([]model.Task, error) {
	rows, err := s.query(ctx, "SELECT "+taskColumns+" FROM tasks WHERE "+ownedSections+" ORDER BY id_task", userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, userID, taskID int64) (model.Task, error) {
	task, err := scanTask(s.queryRow(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id_task = ? AND "+ownedSections, taskID, userID))
	if err != nil {
		return model.Task{}, notFound(err, "get task %d", taskID)
	}
	return task, nil
}

// CreateTask inserts a task under input.SectionID. Callers check the section
// belongs to the user first.
func (s *Store) CreateTask(ctx context.Context, input TaskInput) (model.Task, error) {
	task, err := scanTask(s.queryRow(ctx,
		"INSERT INTO tasks (title_task, description_task, id_section) VALUES (?, ?, ?) RETURNING "+taskColumns,
		input.Title, nullString(input.Description), input.SectionID))
	if err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// UpdateTask rewrites title, description and section of a task owned by the
// user. A nil description clears it.
func (s *Store) UpdateTask(ctx context.Context, userID, taskID int64, input TaskInput) (model.Task, error) {
	task, err := scanTask(s.queryRow(ctx,
		"UPDATE tasks SET title_task = ?, description_task = ?, id_section = ? WHERE id_task = ? AND "+ownedSections+" RETURNING "+taskColumns,
		input.Title, nullString(input.Description), input.SectionID, taskID, userID))
	if err != nil {
		return model.Task{}, notFound(err, "update task %d", taskID)
	}
	return task, nil
}

func (s *Store) DeleteTask(ctx context.Context, userID, taskID int64) error {
	result, err := s.exec(ctx, "DELETE FROM tasks WHERE id_task = ? AND "+ownedSections, taskID, userID)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", taskID, err)
	}
	return expectAffected(result, "delete task %d", taskID)
}
