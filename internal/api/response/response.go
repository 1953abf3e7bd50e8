package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Success bool `json:"success"`
	Code    int  `json:"code"`
	Extras  any  `json:"extras"`
}

func NewResponse(success bool, code int, extras any) Response {
	return Response{
		Success: success,
		Code:    code,
		Extras:  extras,
	}
}

// SuccessResponse returns a JSON response with a success message with no type limitation
func SuccessResponse(c *gin.Context, extras any) {
	SuccessResponseCode(c, http.StatusOK, extras)
}

// SuccessResponseCode is SuccessResponse with a status other than 200.
func SuccessResponseCode(c *gin.Context, code int, extras any) {
	c.JSON(code, NewResponse(true, code, extras))
}

func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(
		code,
		NewResponse(
			false,
			code,
			gin.H{
				"message": message,
			},
		))
}

// IllegalMoveResponse rejects a move. The current state is included so
// clients can re-render without another request.
func IllegalMoveResponse(c *gin.Context, code int, kind, message string, state any) {
	c.JSON(
		code,
		NewResponse(
			false,
			code,
			gin.H{
				"kind":    kind,
				"message": message,
				"state":   state,
			},
		))
}

// AbortErrorResponse is ErrorResponse for middleware.
func AbortErrorResponse(c *gin.Context, code int, message string) {
	ErrorResponse(c, code, message)
	c.Abort()
}
