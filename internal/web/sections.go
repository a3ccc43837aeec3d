package web

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Joseda-hg/taskboard/internal/db"
	"github.com/Joseda-hg/taskboard/internal/model"
)

const sectionNotFound = "Section not found"

type sectionPayload struct {
	Title string `json:"title_section"`
}

// authorize is the single ownership guard in front of every single-resource
// operation. A foreign resource is reported exactly like a missing one.
func (s *Server) authorize(ctx context.Context, kind db.Resource, resourceID int64, identity model.Identity, notFoundMessage string) error {
	ok, err := s.store.Authorize(ctx, kind, resourceID, identity.UserID)
	if err != nil {
		return internalError(err)
	}
	if !ok {
		return notFound(notFoundMessage)
	}
	return nil
}

func (s *Server) listSectionsHandler(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}

	sections, err := s.store.ListSections(c.Request().Context(), identity.UserID)
	if err != nil {
		return internalError(err)
	}
	if len(sections) == 0 {
		return notFound("Sections not found")
	}
	return c.JSON(http.StatusOK, sections)
}

func (s *Server) createSectionHandler(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}

	var payload sectionPayload
	if err := bind(c, s.schemas.section, &payload); err != nil {
		return err
	}

	section, err := s.store.CreateSection(c.Request().Context(), identity.UserID, payload.Title)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusCreated, section)
}

func (s *Server) updateSectionHandler(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}

	sectionID, err := parseID(c, "id", sectionNotFound)
	if err != nil {
		return err
	}

	var payload sectionPayload
	if err := bind(c, s.schemas.section, &payload); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := s.authorize(ctx, db.ResourceSection, sectionID, identity, sectionNotFound); err != nil {
		return err
	}

	section, err := s.store.UpdateSection(ctx, identity.UserID, sectionID, payload.Title)
	if err != nil {
		return storeError(err, sectionNotFound, "")
	}
	return c.JSON(http.StatusOK, section)
}

func (s *Server) deleteSectionHandler(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}

	sectionID, err := parseID(c, "id", sectionNotFound)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := s.authorize(ctx, db.ResourceSection, sectionID, identity, sectionNotFound); err != nil {
		return err
	}

	if err := s.store.DeleteSection(ctx, identity.UserID, sectionID); err != nil {
		return storeError(err, sectionNotFound, "")
	}
	return c.NoContent(http.StatusNoContent)
}
