package echoapi

import (
	"net/http"

	validator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/himanshhhhuv/studentinfo/core"
	"github.com/himanshhhhuv/studentinfo/core/user"
)

// accountApi covers the logged-in user's own account: session introspection,
// password change and self-service deletion.
type accountApi struct {
	conf     *core.Config
	svc      user.ServiceInterface
	validate *validator.Validate
}

func registerAccountAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := accountApi{
		conf:     deps.Conf,
		svc:      deps.UserSvc,
		validate: deps.Validate,
	}

	g.GET("/session", api.session, jwt)

	ag := g.Group("/account", jwt)
	ag.PUT("/password", api.changePassword)
	ag.DELETE("", api.deleteAccount)
}

func (api *accountApi) session(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, SessionResponse{
		User:     usr,
		Redirect: usr.Dashboard(),
	})
}

func (api *accountApi) changePassword(ctx echo.Context) error {
	var data user.ChangePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.svc.ChangePassword(ctx.Request().Context(), usr, data); err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password updated successfully."})
}

func (api *accountApi) deleteAccount(ctx echo.Context) error {
	var data user.DeleteAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeleteAccount")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	err = api.svc.DeleteAccount(ctx.Request().Context(), usr, data.Password)
	if errors.Cause(err) == user.ErrNotVerified {
		return errHttpForbidden
	}
	if err != nil {
		return errors.Wrap(err, "deleting account")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type SessionResponse struct {
	User     user.User `json:"user"`
	Redirect string    `json:"redirect"`
}
