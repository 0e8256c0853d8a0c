package ws

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"BatallaMedieval/internal/shared/logs"
	"BatallaMedieval/internal/shared/transport/http/middleware"
	"BatallaMedieval/internal/sim/entity"
	"BatallaMedieval/internal/sim/service/port"
)

// pushEvent 推给客户端的统一消息壳。
type pushEvent struct {
	Type     string `json:"type"` // notification / progress
	Kind     string `json:"kind,omitempty"`
	Title    string `json:"title,omitempty"`
	Body     string `json:"body,omitempty"`
	Event    string `json:"event,omitempty"`
	Amount   int    `json:"amount,omitempty"`
	PushedAt int64  `json:"pushed_at"`
}

// Hub 玩家在线连接表。结算协程通过它把战报落成/部队到达推给在线玩家，
// 不在线就丢弃——离线玩家下次读城时自然会看到结果。
type Hub struct {
	mu    sync.RWMutex
	conns map[entity.PlayerID]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: make(map[entity.PlayerID]map[*client]struct{})}
}

var _ port.Notifier = (*Hub)(nil)
var _ port.ProgressSink = (*Hub)(nil)

// Notify 实现 port.Notifier。推送失败只记日志，绝不阻塞结算。
func (h *Hub) Notify(_ context.Context, playerID entity.PlayerID, kind, title, body string) {
	h.push(playerID, pushEvent{
		Type:     "notification",
		Kind:     kind,
		Title:    title,
		Body:     body,
		PushedAt: time.Now().Unix(),
	})
}

// Track 实现 port.ProgressSink：进度事件直接透传给客户端做任务进度条。
func (h *Hub) Track(_ context.Context, playerID entity.PlayerID, event string, amount int) {
	h.push(playerID, pushEvent{
		Type:     "progress",
		Event:    event,
		Amount:   amount,
		PushedAt: time.Now().Unix(),
	})
}

func (h *Hub) push(playerID entity.PlayerID, ev pushEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logs.Error("推送消息序列化失败", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[playerID] {
		c.send(payload)
	}
}

// HandleUpgrade 处理 /ws 升级请求。必须先过 JWTAuth。
func (h *Hub) HandleUpgrade(c *gin.Context) {
	uid, ok := middleware.UIDFromContext(c)
	if !ok {
		c.AbortWithStatus(nethttp.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *nethttp.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logs.Error("websocket upgrade error", zap.Error(err))
		return
	}

	cl := newClient(conn)
	h.register(uid, cl)
	logs.Info("玩家连接建立", zap.Int64("uid", uid))

	go cl.writeLoop()
	go func() {
		cl.readLoop()
		h.unregister(uid, cl)
		logs.Info("玩家连接断开", zap.Int64("uid", uid))
	}()
}

func (h *Hub) register(uid entity.PlayerID, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[uid] == nil {
		h.conns[uid] = make(map[*client]struct{})
	}
	h.conns[uid][cl] = struct{}{}
}

func (h *Hub) unregister(uid entity.PlayerID, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns[uid], cl)
	if len(h.conns[uid]) == 0 {
		delete(h.conns, uid)
	}
	cl.close()
}

// ============ 单连接 ============

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	outboundBuffer = 64
)

type client struct {
	conn      *websocket.Conn
	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		out:  make(chan []byte, outboundBuffer),
		done: make(chan struct{}),
	}
}

// send 非阻塞投递；消费慢导致缓冲满就丢包，推送是尽力而为。
func (c *client) send(payload []byte) {
	select {
	case c.out <- payload:
	case <-c.done:
	default:
	}
}

func (c *client) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case payload := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.close()
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// readLoop 只消费控制帧维持心跳，客户端不允许上行业务消息。
func (c *client) readLoop() {
	defer c.close()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
