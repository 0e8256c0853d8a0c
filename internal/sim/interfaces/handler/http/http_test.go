package http

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"BatallaMedieval/internal/shared/security"
	"BatallaMedieval/internal/shared/transport"
	"BatallaMedieval/internal/sim/interfaces/handler"
)

func newTokenRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewHttpHandler(handler.NewSim(nil, nil, nil, nil, nil, nil))
	h.RegisterRoutes(engine.Group(""))
	return engine
}

func TestIssueToken_签发的Token可解析出UID(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-prueba")
	engine := newTokenRouter()

	req := httptest.NewRequest("POST", "/auth/token", strings.NewReader(`{"uid": 7}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp struct {
		Code int `json:"code"`
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应不是合法 JSON: %v", err)
	}
	if resp.Code != transport.OK || resp.Data.Token == "" {
		t.Fatalf("期望签发成功，code=%d body=%s", resp.Code, w.Body.String())
	}

	_, claims, err := security.ParseToken(resp.Data.Token)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if claims.Uid != 7 {
		t.Fatalf("期望 uid=7，got=%d", claims.Uid)
	}
}

func TestIssueToken_非法UID被拒(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-prueba")
	engine := newTokenRouter()

	req := httptest.NewRequest("POST", "/auth/token", strings.NewReader(`{"uid": 0}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应不是合法 JSON: %v", err)
	}
	if resp.Code != transport.InvalidParam {
		t.Fatalf("期望参数错误码 %d，got=%d", transport.InvalidParam, resp.Code)
	}
}
