package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/formavista/sabana/core"
	"github.com/formavista/sabana/core/sabana"
)

type sabanaApi struct {
	svc      *sabana.Service
	validate *validator.Validate
}

func registerSabanaAPI(g *echo.Group, svc *sabana.Service, validate *validator.Validate) {
	api := sabanaApi{svc: svc, validate: validate}

	sg := g.Group("/sabana")
	sg.GET("/:ficha_id", api.baseView)
	sg.GET("/:ficha_id/matrix", api.matrixView)
	sg.GET("/:ficha_id/quarters", api.quarterList)
	sg.GET("/:ficha_id/outcomes/available", api.availableOutcomes)
	sg.GET("/:ficha_id/quarters/:quarter_id/assigned", api.assignedOutcomes)
	sg.POST("/assignments", api.assignOutcome)
	sg.DELETE("/assignments", api.unassignOutcome)
	sg.PUT("/assignments/:id/hours", api.updateHours)
	sg.PUT("/assignments/:id/instructor", api.bindInstructor)
}

// pathID parses a positive integer path parameter.
func pathID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, core.NewValidationError(errors.Errorf("invalid %s", name))
	}
	return id, nil
}

func (api *sabanaApi) baseView(ctx echo.Context) error {
	cohortID, err := pathID(ctx, "ficha_id")
	if err != nil {
		return err
	}

	rows, err := api.svc.BaseView(ctx.Request().Context(), cohortID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *sabanaApi) matrixView(ctx echo.Context) error {
	cohortID, err := pathID(ctx, "ficha_id")
	if err != nil {
		return err
	}

	mtx, err := api.svc.MatrixView(ctx.Request().Context(), cohortID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mtx)
}

func (api *sabanaApi) quarterList(ctx echo.Context) error {
	cohortID, err := pathID(ctx, "ficha_id")
	if err != nil {
		return err
	}

	qtrs, err := api.svc.ListQuarters(ctx.Request().Context(), cohortID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, qtrs)
}

func (api *sabanaApi) availableOutcomes(ctx echo.Context) error {
	cohortID, err := pathID(ctx, "ficha_id")
	if err != nil {
		return err
	}

	outs, err := api.svc.AvailableOutcomes(ctx.Request().Context(), cohortID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, outs)
}

func (api *sabanaApi) assignedOutcomes(ctx echo.Context) error {
	cohortID, err := pathID(ctx, "ficha_id")
	if err != nil {
		return err
	}
	quarterID, err := pathID(ctx, "quarter_id")
	if err != nil {
		return err
	}

	rows, err := api.svc.AssignedOutcomes(ctx.Request().Context(), cohortID, quarterID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *sabanaApi) assignOutcome(ctx echo.Context) error {
	var na sabana.NewAssignment
	if err := ctx.Bind(&na); err != nil {
		return err
	}
	if err := na.Validate(api.validate); err != nil {
		return err
	}

	mtx, err := api.svc.Assign(ctx.Request().Context(), na)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, mtx)
}

func (api *sabanaApi) unassignOutcome(ctx echo.Context) error {
	var ra sabana.RemoveAssignment
	if err := ctx.Bind(&ra); err != nil {
		return err
	}
	if err := ra.Validate(api.validate); err != nil {
		return err
	}

	mtx, err := api.svc.Unassign(ctx.Request().Context(), ra)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mtx)
}

func (api *sabanaApi) updateHours(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var uh sabana.UpdateAssignmentHours
	if err := ctx.Bind(&uh); err != nil {
		return err
	}
	if err := uh.Validate(api.validate); err != nil {
		return err
	}

	asg, err := api.svc.UpdateHours(ctx.Request().Context(), id, uh)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *sabanaApi) bindInstructor(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var bi sabana.BindInstructor
	if err := ctx.Bind(&bi); err != nil {
		return err
	}
	if err := bi.Validate(api.validate); err != nil {
		return err
	}

	asg, err := api.svc.AssignInstructor(ctx.Request().Context(), id, bi)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, asg)
}
