package interfaces

import (
	"github.com/gin-gonic/gin"

	transporthttp "BatallaMedieval/internal/shared/transport/http"
	"BatallaMedieval/internal/shared/transport/http/middleware"
	"BatallaMedieval/internal/sim/interfaces/handler"
	simhttp "BatallaMedieval/internal/sim/interfaces/handler/http"
	"BatallaMedieval/internal/sim/interfaces/handler/ws"
)

// Module 模拟上下文的接口层：REST 路由 + WebSocket 推送。
type Module struct {
	httpHandler *simhttp.HttpHandler
	hub         *ws.Hub
}

func New(sim *handler.Sim, hub *ws.Hub) *Module {
	return &Module{
		httpHandler: simhttp.NewHttpHandler(sim),
		hub:         hub,
	}
}

func (m *Module) HttpRegister(g *gin.RouterGroup) {
	m.httpHandler.RegisterRoutes(g)
	g.GET("/ws", middleware.JWTAuth(), m.hub.HandleUpgrade)
}

var _ transporthttp.Registrar = (*Module)(nil)
