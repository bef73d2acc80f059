package dashboard

import (
	"context"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemdash/pkg/common"
	"github.com/scienceol/chemdash/pkg/common/code"
	core "github.com/scienceol/chemdash/pkg/core/dashboard"
	impl "github.com/scienceol/chemdash/pkg/core/dashboard/dashboard"
	"github.com/scienceol/chemdash/pkg/core/login"
	"github.com/scienceol/chemdash/pkg/core/notify"
	"github.com/scienceol/chemdash/pkg/core/render"
	"github.com/scienceol/chemdash/pkg/middleware/auth"
	"github.com/scienceol/chemdash/pkg/middleware/logger"
	"github.com/scienceol/chemdash/pkg/repo"
)

type Options struct {
	Login          login.Service
	Compounds      repo.CompoundRepo
	Names          repo.NameRepo
	Renderer       render.Renderer
	Center         notify.MsgCenter
	NotifyDuration time.Duration
}

// Handle keeps one dashboard controller per browser session.
type Handle struct {
	opts        Options
	controllers *haxmap.Map[string, core.Controller]
}

func NewDashboardHandle(opts Options) *Handle {
	return &Handle{
		opts:        opts,
		controllers: haxmap.New[string, core.Controller](),
	}
}

// controller returns the session's controller, mounting it on first use. The
// mount outlives the request that triggered it so concurrent requests waiting
// on it are not failed by one client going away.
func (h *Handle) controller(ctx *gin.Context) (core.Controller, error) {
	sessionID := auth.GetSessionID(ctx)
	if sessionID == "" {
		return nil, code.UnLogin
	}
	ctl, loaded := h.controllers.GetOrCompute(sessionID, func() core.Controller {
		return impl.New(impl.Deps{
			Session:        h.opts.Login.Session(sessionID),
			Compounds:      h.opts.Compounds,
			Names:          h.opts.Names,
			Renderer:       h.opts.Renderer,
			Center:         h.opts.Center,
			NotifyDuration: h.opts.NotifyDuration,
		})
	})
	if loaded && ctl.Snapshot().Mounted {
		return ctl, nil
	}
	reqCtx := ctx.Request.Context()
	if _, err := ctl.Mount(context.WithoutCancel(reqCtx)); err != nil && ctl.Terminated() {
		h.Drop(reqCtx, sessionID)
		return nil, err
	}
	return ctl, nil
}

// Drop closes and forgets the controller of sessionID.
func (h *Handle) Drop(ctx context.Context, sessionID string) {
	ctl, ok := h.controllers.Get(sessionID)
	if !ok {
		return
	}
	h.controllers.Del(sessionID)
	ctl.Close(ctx)
}

// Logout ends the dashboard of sessionID; watchers get SessionTerminated.
func (h *Handle) Logout(ctx context.Context, sessionID string) {
	ctl, ok := h.controllers.Get(sessionID)
	if !ok {
		return
	}
	h.controllers.Del(sessionID)
	if err := ctl.Logout(ctx); err != nil {
		logger.Errorf(ctx, "dashboard %s logout err: %+v", sessionID, err)
	}
}

// Close tears down every controller, on server shutdown.
func (h *Handle) Close(ctx context.Context) {
	ids := make([]string, 0, h.controllers.Len())
	h.controllers.ForEach(func(id string, _ core.Controller) bool {
		ids = append(ids, id)
		return true
	})
	for _, id := range ids {
		h.Drop(ctx, id)
	}
}

func (h *Handle) reply(ctx *gin.Context, ctl core.Controller, snap *core.Snapshot, err error) {
	if ctl.Terminated() {
		h.Drop(ctx.Request.Context(), auth.GetSessionID(ctx))
		common.ReplyErr(ctx, code.UnLogin)
		return
	}
	if snap == nil {
		common.ReplyErr(ctx, err)
		return
	}
	common.ReplyState(ctx, err, snap)
}

// action runs fn on the session's controller and replies with the resulting state.
// The controller only sees the request context; the gin context is recycled
// once the handler returns.
func (h *Handle) action(name string, fn func(ctx context.Context, ctl core.Controller) (*core.Snapshot, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctl, err := h.controller(ctx)
		if err != nil {
			logger.Warnf(ctx, "dashboard %s load controller err: %v", name, err)
			common.ReplyErr(ctx, code.UnLogin)
			return
		}
		snap, err := fn(ctx.Request.Context(), ctl)
		if err != nil {
			logger.Warnf(ctx, "dashboard %s err: %v", name, err)
		}
		h.reply(ctx, ctl, snap, err)
	}
}

func (h *Handle) Dashboard(ctx *gin.Context) {
	h.action("mount", func(_ context.Context, ctl core.Controller) (*core.Snapshot, error) {
		return ctl.Snapshot(), nil
	})(ctx)
}

func (h *Handle) SetQuery(ctx *gin.Context) {
	req := &core.SetQueryReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse SetQuery param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	h.action("set query", func(ctx context.Context, ctl core.Controller) (*core.Snapshot, error) {
		return ctl.SetQuery(ctx, req.Query)
	})(ctx)
}

func (h *Handle) Search(ctx *gin.Context) {
	h.action("search", func(ctx context.Context, ctl core.Controller) (*core.Snapshot, error) {
		return ctl.Search(ctx)
	})(ctx)
}

func (h *Handle) Save(ctx *gin.Context) {
	h.action("save", func(ctx context.Context, ctl core.Controller) (*core.Snapshot, error) {
		return ctl.Save(ctx)
	})(ctx)
}

func (h *Handle) Delete(ctx *gin.Context) {
	req := &core.CompoundReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		logger.Errorf(ctx, "parse Delete param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	h.action("delete", func(ctx context.Context, ctl core.Controller) (*core.Snapshot, error) {
		return ctl.Delete(ctx, req.ID)
	})(ctx)
}

func (h *Handle) ShareIntent(ctx *gin.Context) {
	req := &core.CompoundReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		logger.Errorf(ctx, "parse ShareIntent param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	h.action("share intent", func(ctx context.Context, ctl core.Controller) (*core.Snapshot, error) {
		return ctl.ShareIntent(ctx, req.ID)
	})(ctx)
}

func (h *Handle) SelectUser(ctx *gin.Context) {
	req := &core.SelectUserReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse SelectUser param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	h.action("select user", func(ctx context.Context, ctl core.Controller) (*core.Snapshot, error) {
		return ctl.SelectUser(ctx, req.UserID)
	})(ctx)
}

func (h *Handle) ShareConfirm(ctx *gin.Context) {
	h.action("share confirm", func(ctx context.Context, ctl core.Controller) (*core.Snapshot, error) {
		return ctl.ShareConfirm(ctx)
	})(ctx)
}

func (h *Handle) ShareCancel(ctx *gin.Context) {
	h.action("share cancel", func(ctx context.Context, ctl core.Controller) (*core.Snapshot, error) {
		return ctl.ShareCancel(ctx)
	})(ctx)
}

func (h *Handle) Dismiss(ctx *gin.Context) {
	h.action("dismiss", func(ctx context.Context, ctl core.Controller) (*core.Snapshot, error) {
		return ctl.Dismiss(ctx)
	})(ctx)
}
