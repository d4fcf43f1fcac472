package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/walleterr"
)

// Response defines the standard JSON structure
type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"msg"`
	Data    interface{} `json:"data"`
}

// Success returns a success response with data
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = gin.H{} // Return empty object instead of null
	}
	c.JSON(http.StatusOK, Response{
		Code:    "OK",
		Message: "OK",
		Data:    data,
	})
}

// Error returns an error response. The envelope always travels with
// HTTP 200, callers dispatch on the kind code.
func Error(c *gin.Context, err error) {
	kind, msg := walleterr.Decode(err)
	c.JSON(http.StatusOK, Response{
		Code:    string(kind),
		Message: msg,
		Data:    gin.H{},
	})
}
