package encounter

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ehr/patientsvc/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes nests encounters under their patient. The patientId path
// segment only scopes the listing; single-encounter routes address the
// encounter by its own id.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:patientId/encounters", h.ListEncounters)
	api.POST("/patients/:patientId/encounters", h.AddEncounter)
	api.GET("/patients/:patientId/encounters/:id", h.GetEncounter)
	api.PUT("/patients/:patientId/encounters/:id", h.UpdateEncounter)
	api.DELETE("/patients/:patientId/encounters/:id", h.DeleteEncounter)
}

func (h *Handler) ListEncounters(c echo.Context) error {
	patientID, err := pathID(c, "patientId")
	if err != nil {
		return err
	}
	encs, err := h.svc.QueryByPatientID(c.Request().Context(), patientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, encs)
}

func (h *Handler) GetEncounter(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	enc, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, enc)
}

func (h *Handler) AddEncounter(c echo.Context) error {
	var enc Encounter
	if err := c.Bind(&enc); err != nil {
		return err
	}
	saved, err := h.svc.Add(c.Request().Context(), &enc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, saved)
}

func (h *Handler) UpdateEncounter(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var enc Encounter
	if err := c.Bind(&enc); err != nil {
		return err
	}
	saved, err := h.svc.UpdateByID(c.Request().Context(), id, &enc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saved)
}

func (h *Handler) DeleteEncounter(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteByID(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperr.BadRequest("invalid " + name)
	}
	return id, nil
}
