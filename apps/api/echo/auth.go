package echoapi

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hanslwng/taskmatrix/core"
	"github.com/hanslwng/taskmatrix/core/session"
)

const sessionCookieName = "tm_session"

var (
	// appJWTConfig reads the signed session token from the session cookie.
	appJWTConfig = middleware.JWTConfig{
		SigningKey:    core.Conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		TokenLookup:   "cookie:" + sessionCookieName,
		ContextKey:    "sessionToken",
		Claims:        new(Claims),
	}
	contextSessionKey = "session"
)

// Claims wraps the server-side session id in a signed token. The cookie
// itself holds no identity data; everything else lives in the sessions table.
type Claims struct {
	jwt.StandardClaims
}

func GetSessionClaims(sess session.Session) *Claims {
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   sess.ID,
			ExpiresAt: sess.ExpiresAt.Unix(),
			IssuedAt:  sess.CreatedAt.Unix(),
		},
	}
}

// GenerateToken generates a signed JWT token string representing the session Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey.([]byte))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func setSessionCookie(ctx echo.Context, sess session.Session) error {
	token, err := GenerateToken(GetSessionClaims(sess))
	if err != nil {
		return errors.Wrap(err, "generating session token")
	}
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !core.Conf.Debug,
	})
	return nil
}

func clearSessionCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// sessionMiddleware resolves the signed session id against the sessions
// table and injects the live session into the context. A stale cookie is
// cleared on the way out.
func sessionMiddleware(svc *session.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}

			sess, err := svc.Get(ctx.Request().Context(), claims.Subject)
			if err != nil {
				if errors.Cause(err) == session.ErrNotFound {
					clearSessionCookie(ctx)
					return errUnauthorized
				}
				return errors.Wrap(err, "resolving session")
			}

			ctx.Set(contextSessionKey, sess)
			return next(ctx)
		}
	}
}

func getContextSession(ctx echo.Context) (session.Session, error) {
	if sess, ok := ctx.Get(contextSessionKey).(session.Session); ok {
		return sess, nil
	}
	return session.Session{}, errUnauthorized
}
