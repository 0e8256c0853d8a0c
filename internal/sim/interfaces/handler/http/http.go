package http

import (
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"BatallaMedieval/internal/shared/security"
	"BatallaMedieval/internal/shared/transport"
	"BatallaMedieval/internal/shared/transport/http/middleware"
	"BatallaMedieval/internal/sim/entity"
	"BatallaMedieval/internal/sim/interfaces/handler"
	"BatallaMedieval/internal/sim/interfaces/handler/dto"
)

type HttpHandler struct {
	sim *handler.Sim
}

func NewHttpHandler(s *handler.Sim) *HttpHandler {
	return &HttpHandler{sim: s}
}

func (h *HttpHandler) RegisterRoutes(group *gin.RouterGroup) {
	// 开发期直发 token；接入账号体系后由登录服务签发
	group.POST("/auth/token", h.IssueToken)

	simGroup := group.Group("/sim")
	simGroup.Use(middleware.JWTAuth())

	simGroup.POST("/worlds", h.CreateWorld)
	simGroup.POST("/worlds/:id/events", h.ScheduleEvent)
	simGroup.POST("/worlds/:id/tick", h.TickWorld)

	simGroup.POST("/cities", h.FoundCity)
	simGroup.GET("/cities/:id", h.GetCity)
	simGroup.POST("/cities/:id/build", h.EnqueueBuilding)
	simGroup.POST("/cities/:id/train", h.EnqueueTroops)

	simGroup.DELETE("/queues/:id", h.CancelQueueEntry)

	simGroup.POST("/movements", h.SendMovement)
}

func (h *HttpHandler) IssueToken(c *gin.Context) {
	var req dto.TokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}

	token, err := security.Award(req.UID)
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.TokenView{Token: token})
}

func (h *HttpHandler) CreateWorld(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateWorldReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}

	world, err := h.sim.WorldGen.CreateWorld(ctx, req.Name, req.SpeedModifier, req.ResourceModifier)
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.NewWorldView(world))
}

func (h *HttpHandler) ScheduleEvent(c *gin.Context) {
	ctx := c.Request.Context()

	worldID, ok := pathID(c)
	if !ok {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}
	var req dto.ScheduleEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}

	event := &entity.WorldEvent{
		WorldID:     worldID,
		Name:        req.Name,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Modifiers:   req.Modifiers,
	}
	if err := h.sim.WorldGen.ScheduleEvent(ctx, event); err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, gin.H{"event_id": event.ID})
}

// TickWorld 手动推一格，运维和联调用。常规推进由后台 Runner 驱动。
func (h *HttpHandler) TickWorld(c *gin.Context) {
	ctx := c.Request.Context()

	worldID, ok := pathID(c)
	if !ok {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}

	result, err := h.sim.Tick.Tick(ctx, &worldID)
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, gin.H{
		"processed_queues":    result.ProcessedQueues,
		"processed_movements": result.ProcessedMovements,
	})
}

func (h *HttpHandler) FoundCity(c *gin.Context) {
	ctx := c.Request.Context()
	uid, _ := middleware.UIDFromContext(c)

	var req dto.FoundCityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}

	city, err := h.sim.WorldGen.FoundCity(ctx, req.WorldID, uid, req.Name)
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.NewCityView(city))
}

// GetCity 读城即结算：返回的快照已包含离线期间的产出。
func (h *HttpHandler) GetCity(c *gin.Context) {
	ctx := c.Request.Context()
	uid, _ := middleware.UIDFromContext(c)

	cityID, ok := pathID(c)
	if !ok {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}
	if err := h.sim.AuthorizeCity(ctx, cityID, uid); err != nil {
		h.error(c, err)
		return
	}

	city, err := h.sim.Production.SettleCity(ctx, cityID)
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.NewCityView(city))
}

func (h *HttpHandler) EnqueueBuilding(c *gin.Context) {
	ctx := c.Request.Context()
	uid, _ := middleware.UIDFromContext(c)

	cityID, ok := pathID(c)
	if !ok {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}
	var req dto.BuildReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}
	if err := h.sim.AuthorizeCity(ctx, cityID, uid); err != nil {
		h.error(c, err)
		return
	}

	entry, err := h.sim.Queues.EnqueueBuilding(ctx, cityID, req.Building)
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.QueueItemView{
		ID: entry.ID, Building: entry.Building, Target: entry.TargetLevel, FinishAt: entry.FinishAt,
	})
}

func (h *HttpHandler) EnqueueTroops(c *gin.Context) {
	ctx := c.Request.Context()
	uid, _ := middleware.UIDFromContext(c)

	cityID, ok := pathID(c)
	if !ok {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}
	var req dto.TrainReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}
	if err := h.sim.AuthorizeCity(ctx, cityID, uid); err != nil {
		h.error(c, err)
		return
	}

	entry, err := h.sim.Queues.EnqueueTroops(ctx, cityID, req.Unit, req.Amount)
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.QueueItemView{
		ID: entry.ID, Unit: entry.Unit, Amount: entry.Amount, FinishAt: entry.FinishAt,
	})
}

func (h *HttpHandler) CancelQueueEntry(c *gin.Context) {
	ctx := c.Request.Context()
	uid, _ := middleware.UIDFromContext(c)

	entryID, ok := pathID(c)
	if !ok {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}
	if err := h.sim.AuthorizeQueueEntry(ctx, entryID, uid); err != nil {
		h.error(c, err)
		return
	}

	refunded, err := h.sim.Queues.Cancel(ctx, entryID)
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, gin.H{"refunded": refunded})
}

func (h *HttpHandler) SendMovement(c *gin.Context) {
	ctx := c.Request.Context()
	uid, _ := middleware.UIDFromContext(c)

	var req dto.SendMovementReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}
	if err := h.sim.AuthorizeCity(ctx, req.OriginCityID, uid); err != nil {
		h.error(c, err)
		return
	}

	movement, err := h.sim.Movements.Send(ctx, req.ToOrder())
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.NewMovementView(movement))
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *HttpHandler) ok(c *gin.Context, data any) {
	c.JSON(nethttp.StatusOK, dto.Success(transport.OK, data))
}

func (h *HttpHandler) fail(c *gin.Context, code int, msg string) {
	c.JSON(nethttp.StatusOK, dto.Error(code, msg))
}

func (h *HttpHandler) error(c *gin.Context, err error) {
	code, msg := handler.HandleError(err)
	h.fail(c, code, msg)
}
