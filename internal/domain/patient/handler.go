package patient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ehr/patientsvc/internal/platform/apperr"
)

// Deleter removes a patient after checking its dependents.
type Deleter interface {
	DeletePatient(ctx context.Context, id int64) error
}

type Handler struct {
	svc     *Service
	deleter Deleter
}

// NewHandler routes DELETE through deleter; a nil deleter falls back to
// Service.DeleteByID.
func NewHandler(svc *Service, deleter Deleter) *Handler {
	return &Handler{svc: svc, deleter: deleter}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.QueryPatients)
	api.POST("/patients", h.AddPatient)
	api.GET("/patients/:id", h.GetPatient)
	api.PUT("/patients/:id", h.UpdatePatient)
	api.DELETE("/patients/:id", h.DeletePatient)
}

func (h *Handler) QueryPatients(c echo.Context) error {
	ex, err := exampleFromQuery(c)
	if err != nil {
		return err
	}
	patients, err := h.svc.Query(c.Request().Context(), ex)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) AddPatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return err
	}
	saved, err := h.svc.Add(c.Request().Context(), &p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, saved)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return err
	}
	saved, err := h.svc.UpdateByID(c.Request().Context(), id, &p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saved)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if h.deleter != nil {
		err = h.deleter.DeletePatient(ctx, id)
	} else {
		err = h.svc.DeleteByID(ctx, id)
	}
	if err != nil {
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

// exampleFromQuery builds an Example from the query string. Parameters use
// the JSON field names; absent parameters stay nil.
func exampleFromQuery(c echo.Context) (Example, error) {
	var (
		ex Example
		qp = c.QueryParams()
	)
	str := func(name string) *string {
		if !qp.Has(name) {
			return nil
		}
		v := qp.Get(name)
		return &v
	}
	ex.FirstName = str("firstName")
	ex.LastName = str("lastName")
	ex.SSN = str("ssn")
	ex.Email = str("email")
	ex.City = str("city")
	ex.Street = str("street")
	ex.State = str("state")
	ex.Postal = str("postal")
	ex.Insurance = str("insurance")
	ex.Gender = str("gender")

	if v := str("id"); v != nil {
		id, err := strconv.ParseInt(*v, 10, 64)
		if err != nil {
			return ex, apperr.BadRequest("invalid id")
		}
		ex.ID = &id
	}
	if v := str("age"); v != nil {
		age, err := strconv.Atoi(*v)
		if err != nil {
			return ex, apperr.BadRequest("invalid age")
		}
		ex.Age = &age
	}
	for name, dst := range map[string]**float64{"height": &ex.Height, "weight": &ex.Weight} {
		if v := str(name); v != nil {
			f, err := strconv.ParseFloat(*v, 64)
			if err != nil {
				return ex, apperr.BadRequest("invalid " + name)
			}
			*dst = &f
		}
	}
	return ex, nil
}
