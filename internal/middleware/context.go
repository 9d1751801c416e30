package middleware

import "github.com/labstack/echo/v4"

// UserIDKey is the echo context key holding the authenticated user's id.
const UserIDKey = "userID"

// UserID returns the authenticated user's id, or 0 when the request is anonymous.
func UserID(c echo.Context) uint {
	if id, ok := c.Get(UserIDKey).(uint); ok {
		return id
	}
	return 0
}
