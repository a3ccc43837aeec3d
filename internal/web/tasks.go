package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Joseda-hg/taskboard/internal/db"
)

const (
	taskNotFound         = "Task not found"
	targetSectionMissing = "Section not found or does not belong to the user"
)

type taskPayload struct {
	Title       string    `json:"title_task"`
	Description *string   `json:"description_task"`
	SectionID   numericID `json:"id_section"`
}

func (p taskPayload) input() db.TaskInput {
	return db.TaskInput{Title: p.Title, Description: p.Description, SectionID: int64(p.SectionID)}
}

func (s *Server) listTasksHandler(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}

	tasks, err := s.store.ListTasks(c.Request().Context(), identity.UserID)
	if err != nil {
		return internalError(err)
	}
	if len(tasks) == 0 {
		return notFound("Tasks not found")
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) getTaskHandler(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}

	taskID, err := parseID(c, "id", taskNotFound)
	if err != nil {
		return err
	}

	task, err := s.store.GetTask(c.Request().Context(), identity.UserID, taskID)
	if err != nil {
		return storeError(err, taskNotFound, "")
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) createTaskHandler(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}

	var payload taskPayload
	if err := bind(c, s.schemas.task, &payload); err != nil {
		return err
	}

	ctx := c.Request().Context()
	input := payload.input()
	if err := s.authorize(ctx, db.ResourceSection, input.SectionID, identity, targetSectionMissing); err != nil {
		return err
	}

	task, err := s.store.CreateTask(ctx, input)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusCreated, task)
}

// updateTaskHandler may move the task to another section; both the task and
// the target section must belong to the caller.
func (s *Server) updateTaskHandler(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}

	taskID, err := parseID(c, "id", taskNotFound)
	if err != nil {
		return err
	}

	var payload taskPayload
	if err := bind(c, s.schemas.task, &payload); err != nil {
		return err
	}

	ctx := c.Request().Context()
	input := payload.input()
	if err := s.authorize(ctx, db.ResourceTask, taskID, identity, taskNotFound); err != nil {
		return err
	}
	if err := s.authorize(ctx, db.ResourceSection, input.SectionID, identity, targetSectionMissing); err != nil {
		return err
	}

	task, err := s.store.UpdateTask(ctx, identity.UserID, taskID, input)
	if err != nil {
		return storeError(err, taskNotFound, "")
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTaskHandler(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}

	taskID, err := parseID(c, "id", taskNotFound)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := s.authorize(ctx, db.ResourceTask, taskID, identity, taskNotFound); err != nil {
		return err
	}

	if err := s.store.DeleteTask(ctx, identity.UserID, taskID); err != nil {
		return storeError(err, taskNotFound, "")
	}
	return c.NoContent(http.StatusNoContent)
}
