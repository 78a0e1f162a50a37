package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/flyva/travel-backend/internal/fares"
	"github.com/flyva/travel-backend/internal/services"
	"github.com/flyva/travel-backend/internal/utils"
)

type simpleResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Operation successful"`
}

// pagedResponse is the envelope of every paginated listing.
type pagedResponse struct {
	CurrentPage    int   `json:"currentPage" example:"1"`
	TotalPages     int   `json:"totalPages" example:"3"`
	TotalDocuments int64 `json:"totalDocuments" example:"57"`
	Results        any   `json:"results"`
}

func newPaged(p utils.Page, total int64, results any) pagedResponse {
	return pagedResponse{
		CurrentPage:    p.Number,
		TotalPages:     max(utils.TotalPages(total, p.Size), 1),
		TotalDocuments: total,
		Results:        results,
	}
}

// pageOf clamps p into [1, totalPages] and slices items accordingly.
func pageOf[T any](p utils.Page, items []T) pagedResponse {
	total := int64(len(items))
	if tp := max(utils.TotalPages(total, p.Size), 1); p.Number > tp {
		p.Number = tp
	}
	start, end := p.Window(len(items))
	return newPaged(p, total, items[start:end])
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: msg})
}

func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, simpleResponse{Success: false, Message: "Not found"})
}

func deleted(c echo.Context) error {
	return c.JSON(http.StatusOK, simpleResponse{Success: true, Message: "Deleted"})
}

// fail maps a service error onto a response. Unexpected errors are logged
// and reported as a generic server error.
func fail(c echo.Context, err error) error {
	var ve *services.ValidationError
	var ae *fares.ArgumentError
	switch {
	case errors.As(err, &ve):
		return badRequest(c, ve.Msg)
	case errors.As(err, &ae):
		return badRequest(c, ae.Message)
	case errors.Is(err, services.ErrNotFound):
		return notFound(c)
	case errors.Is(err, services.ErrDuplicate):
		return c.JSON(http.StatusConflict, simpleResponse{Success: false, Message: "Already exists"})
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Server error"})
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

var errInvalidPayload = errors.New("Invalid payload")

// decode binds the request body into v and runs its validate tags. The
// returned error message is meant for the client.
func decode(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return errInvalidPayload
	}
	return c.Validate(v)
}
