package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/olahol/melody"
	"github.com/scienceol/chemdash/pkg/common"
	"github.com/scienceol/chemdash/pkg/common/code"
	"github.com/scienceol/chemdash/pkg/core/notify"
	"github.com/scienceol/chemdash/pkg/middleware/auth"
	"github.com/scienceol/chemdash/pkg/middleware/logger"
)

const maxMessageSize = 1024

// Handle pushes dashboard events to the websockets of the session they
// belong to. Clients only listen; inbound messages are ignored.
type Handle struct {
	wsClient *melody.Melody
}

func NewWSHandle(ctx context.Context, center notify.MsgCenter) (*Handle, error) {
	wsClient := melody.New()
	wsClient.Config.MaxMessageSize = maxMessageSize
	h := &Handle{wsClient: wsClient}
	h.initWebSocket()

	for _, action := range []notify.Action{
		notify.NotificationShown,
		notify.NotificationCleared,
		notify.SessionTerminated,
	} {
		if err := center.Registry(ctx, action, h.push); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Handle) Dashboard(ctx *gin.Context) {
	sessionID := auth.GetSessionID(ctx)
	if sessionID == "" {
		common.ReplyErr(ctx, code.UnLogin)
		return
	}
	if err := h.wsClient.HandleRequestWithKeys(ctx.Writer, ctx.Request, map[string]any{
		auth.SESSIONKEY: sessionID,
		"ctx":           ctx.Request.Context(),
	}); err != nil {
		logger.Errorf(ctx, "Dashboard HandleRequestWithKeys err: %+v", err)
	}
}

func (h *Handle) push(ctx context.Context, msg *notify.SendMsg) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return code.NotifySendMsgErr.WithErr(err)
	}
	if err := h.wsClient.BroadcastFilter(data, func(s *melody.Session) bool {
		id, ok := s.Get(auth.SESSIONKEY)
		return ok && id == msg.SessionID
	}); err != nil && !errors.Is(err, melody.ErrClosed) {
		logger.Errorf(ctx, "ws push %s to session %s err: %+v", msg.Channel, msg.SessionID, err)
		return code.NotifySendMsgErr.WithErr(err)
	}
	return nil
}

func (h *Handle) Close() error {
	return h.wsClient.Close()
}

func (h *Handle) initWebSocket() {
	h.wsClient.HandleConnect(func(s *melody.Session) {
		if ctx, ok := s.Get("ctx"); ok {
			logger.Infof(ctx.(context.Context), "dashboard ws connect keys: %+v", s.Keys)
		}
	})

	h.wsClient.HandleDisconnect(func(s *melody.Session) {
		if ctx, ok := s.Get("ctx"); ok {
			logger.Infof(ctx.(context.Context), "dashboard ws client disconnected keys: %+v", s.Keys)
		}
	})

	h.wsClient.HandleError(func(s *melody.Session, err error) {
		if errors.Is(err, melody.ErrMessageBufferFull) {
			return
		}
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseGoingAway {
			return
		}
		if ctx, ok := s.Get("ctx"); ok {
			logger.Errorf(ctx.(context.Context), "dashboard ws error keys: %+v, err: %+v", s.Keys, err)
		}
	})

	h.wsClient.HandleMessage(func(_ *melody.Session, _ []byte) {})
}
