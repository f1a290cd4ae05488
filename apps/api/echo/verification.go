package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hanslwng/taskmatrix/core"
	"github.com/hanslwng/taskmatrix/core/verification"
)

type verificationApi struct {
	svc *verification.Service
}

func registerVerificationAPI(g *echo.Group, sessmw []echo.MiddlewareFunc, svc *verification.Service) {
	api := verificationApi{svc: svc}

	vg := g.Group("/verification", sessmw...)
	vg.POST("", api.dispatch)
}

// dispatch routes on the "action" field, keeping the single-endpoint wire
// contract the frontend expects.
func (api *verificationApi) dispatch(ctx echo.Context) error {
	var data VerificationRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerificationRequest")
	}

	switch data.Action {
	case "send_code":
		return api.sendCode(ctx, data)
	case "verify_code":
		return api.verifyCode(ctx, data)
	}
	return core.NewValidationError(nil, core.FieldError{Field: "action", Error: "must be send_code or verify_code"})
}

func (api *verificationApi) sendCode(ctx echo.Context, data VerificationRequest) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	ic := verification.IssueCode{Email: data.Email}
	if err := ic.Validate(); err != nil {
		return err
	}

	if err := api.svc.IssueCode(ctx.Request().Context(), sess.ID, ic); err != nil {
		if errors.Cause(err) == verification.ErrDispatch {
			return echo.NewHTTPError(http.StatusServiceUnavailable, verification.ErrDispatch.Error())
		}
		return errors.Wrap(err, "issuing verification code")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Verification code sent."})
}

func (api *verificationApi) verifyCode(ctx echo.Context, data VerificationRequest) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	vc := verification.VerifyCode{Email: data.Email, Code: data.Code}
	if err := vc.Validate(); err != nil {
		return err
	}

	if err := api.svc.Verify(ctx.Request().Context(), sess.ID, sess.UserID, vc); err != nil {
		switch errors.Cause(err) {
		case verification.ErrNoChallenge, verification.ErrCodeExpired, verification.ErrCodeMismatch:
			return core.NewValidationError(errors.Cause(err))
		}
		return errors.Wrap(err, "verifying code")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Email verified."})
}

type VerificationRequest struct {
	Action string `json:"action" form:"action"`
	Email  string `json:"email" form:"email"`
	Code   string `json:"code" form:"code"`
}
