package middleware

import (
	nethttp "net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"BatallaMedieval/internal/shared/security"
	"BatallaMedieval/internal/shared/transport"
)

const ctxKeyUID = "uid"

// JWTAuth 校验 Authorization: Bearer <token>，通过后把 uid 写进 gin 上下文。
// websocket 场景浏览器带不了自定义 Header，兼容 ?token= 查询参数。
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortUnauthorized(c)
			return
		}

		_, claims, err := security.ParseToken(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(ctxKeyUID, claims.Uid)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return c.Query("token")
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(nethttp.StatusOK, gin.H{
		"code": transport.Unauthorized,
		"msg":  "未登录或凭证已失效",
	})
}

// UIDFromContext 取出 JWTAuth 写入的玩家 ID。
func UIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxKeyUID)
	if !ok {
		return 0, false
	}
	uid, ok := v.(int64)
	return uid, ok
}
