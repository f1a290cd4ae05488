package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hanslwng/taskmatrix/core"
	"github.com/hanslwng/taskmatrix/core/session"
	"github.com/hanslwng/taskmatrix/core/user"
)

type userApi struct {
	svc     *user.Service
	sessSvc *session.Service
}

func registerUserAPI(g *echo.Group, sessmw []echo.MiddlewareFunc, svc *user.Service, sessSvc *session.Service) {
	api := userApi{svc: svc, sessSvc: sessSvc}

	ug := g.Group("/users")

	// un-authed endpoints
	// TODO: rate limit `/password-reset` & `/password-reset-confirm`
	ug.POST("/register", api.register)
	ug.POST("/login", api.login)
	ug.POST("/password-reset", api.resetPassword)
	ug.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	ag := ug.Group("", sessmw...)
	ag.POST("/logout", api.logout)
	ag.GET("/me", api.retrieveSelf)
	ag.PUT("/me", api.updateSelf)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.svc); err != nil {
		return err
	}

	if _, err := api.svc.Register(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, RegisterResponse{
		Success:  true,
		Message:  "Registration successful! Please log in.",
		Redirect: "login.html",
	})
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating")
	}

	sess, err := api.sessSvc.Start(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "starting session")
	}
	if err = setSessionCookie(ctx, sess); err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Success:  true,
		Redirect: "dashboard.html",
		UserName: usr.Name,
	})
}

func (api *userApi) logout(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	if err = api.sessSvc.Delete(ctx.Request().Context(), sess.ID); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	clearSessionCookie(ctx)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (api *userApi) retrieveSelf(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), sess.UserID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) updateSelf(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), sess.UserID)
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}

	var data user.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err := data.Validate(usr); err != nil {
		return err
	}

	usr, err = api.svc.UpdateProfile(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "If the email address supplied is associated with an account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *userApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		switch errors.Cause(err) {
		case user.ErrNotFound, user.ErrTokenExpired:
			return core.NewValidationError(errors.New("reset link is invalid or has expired"))
		}
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Password has been reset with the new password."})
}

type (
	LoginRequest struct {
		Email    string `json:"email" form:"email" validate:"required,email"`
		Password string `json:"password" form:"password" validate:"required"`
	}

	LoginResponse struct {
		Success  bool   `json:"success"`
		Redirect string `json:"redirect"`
		UserName string `json:"userName"`
	}

	RegisterResponse struct {
		Success  bool   `json:"success"`
		Message  string `json:"message"`
		Redirect string `json:"redirect"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" form:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message,omitempty"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.Validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate() error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return core.Validate.Struct(pr)
}
