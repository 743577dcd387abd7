package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const cartSessionCookie = "cart_session"
const cartSessionKey = "cart_session_id"

// CartSession はカートのセッションIDをcookieで割り当てる。
// ログイン不要のカートなので、識別子はブラウザ単位。
func CartSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var sessionID string

			if ck, err := c.Cookie(cartSessionCookie); err == nil && ck.Value != "" {
				sessionID = ck.Value
			} else {
				sessionID = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     cartSessionCookie,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(cartSessionKey, sessionID)
			return next(c)
		}
	}
}

func GetCartSessionID(c echo.Context) (string, bool) {
	v, ok := c.Get(cartSessionKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
