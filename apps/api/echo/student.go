package echoapi

import (
	"net/http"

	validator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/himanshhhhuv/studentinfo/core/student"
	"github.com/himanshhhhuv/studentinfo/core/user"
)

type studentApi struct {
	svc      student.ServiceInterface
	userSvc  user.ServiceInterface
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := studentApi{
		svc:      deps.StudentSvc,
		userSvc:  deps.UserSvc,
		validate: deps.Validate,
	}

	sg := g.Group("/studentinfo", jwt)
	sg.POST("", api.submit)
	sg.GET("", api.retrieve)
}

// submit is the one-time intake form. The formFilled flag gates it: once set,
// repeat submissions are rejected.
func (api *studentApi) submit(ctx echo.Context) error {
	var data student.NewInfo
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInfo")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	info, err := api.svc.Submit(ctx.Request().Context(), usr, data)
	if errors.Cause(err) == student.ErrAlreadySubmitted {
		return errFormAlreadyFilled
	}
	if err != nil {
		return errors.Wrap(err, "submitting student info")
	}

	// refresh the cached context user so a follow-up /session reflects the flag
	usr.FormFilled = true
	ctx.Set(contextUserKey, usr)

	return ctx.JSON(http.StatusCreated, info)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	info, err := api.svc.GetByUserID(ctx.Request().Context(), usr.ID)
	if errors.Cause(err) == student.ErrNotFound {
		return errHttpNotFound
	}
	if err != nil {
		return errors.Wrap(err, "finding student info")
	}
	return ctx.JSON(http.StatusOK, info)
}
