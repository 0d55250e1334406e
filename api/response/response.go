package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Code int         `json:"code"` // 0:成功, -1:失败
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: 0,
		Msg:  "success",
		Data: data,
	})
}

func Fail(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, Response{
		Code: -1,
		Msg:  msg,
		Data: nil,
	})
}

// FailWithStatus 基础设施故障等需要非 200 状态码的场景
func FailWithStatus(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{
		Code: -1,
		Msg:  msg,
		Data: nil,
	})
}
