package dashboard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/scienceol/chemdash/internal/config"
	"github.com/scienceol/chemdash/pkg/common/code"
	core "github.com/scienceol/chemdash/pkg/core/dashboard"
	"github.com/scienceol/chemdash/pkg/core/dialog"
	"github.com/scienceol/chemdash/pkg/core/login"
	"github.com/scienceol/chemdash/pkg/core/notify"
	"github.com/scienceol/chemdash/pkg/core/notify/toast"
	"github.com/scienceol/chemdash/pkg/core/render"
	"github.com/scienceol/chemdash/pkg/middleware/logger"
	"github.com/scienceol/chemdash/pkg/repo"
	"github.com/scienceol/chemdash/pkg/repo/model"
	"golang.org/x/sync/errgroup"
)

const (
	msgSaved         = "Compound saved successfully"
	msgDeleted       = "Compound deleted successfully"
	msgShared        = "Compound shared successfully"
	msgSessionExpire = "Session expired, please log in again"
)

type Deps struct {
	Session   login.Session
	Compounds repo.CompoundRepo
	Names     repo.NameRepo
	Renderer  render.Renderer
	// Center receives notification and session events, optional.
	Center         notify.MsgCenter
	NotifyDuration time.Duration
}

type dashboardImpl struct {
	mu sync.Mutex
	// mountMu serializes Mount so the collection is fetched once.
	mountMu sync.Mutex

	session   login.Session
	compounds repo.CompoundRepo
	names     repo.NameRepo
	renderer  render.Renderer
	center    notify.MsgCenter
	toast     *toast.Toast
	share     *dialog.Share

	collection []model.Compound
	users      []model.User
	markups    map[string]render.Markup
	query      string
	preview    *core.Preview
	mounted    bool
	closed     bool
	terminated bool
}

func New(deps Deps) core.Controller {
	if deps.NotifyDuration <= 0 {
		deps.NotifyDuration = config.Global().Notify.Duration
	}
	d := &dashboardImpl{
		session:   deps.Session,
		compounds: deps.Compounds,
		names:     deps.Names,
		renderer:  deps.Renderer,
		center:    deps.Center,
		share:     dialog.NewShare(),
		markups:   map[string]render.Markup{},
	}
	d.toast = toast.New(deps.NotifyDuration, d.publishNotification)
	return d
}

func (d *dashboardImpl) publishNotification(action notify.Action, n notify.Notification) {
	d.broadcast(context.Background(), action, n)
}

func (d *dashboardImpl) broadcast(ctx context.Context, action notify.Action, data any) {
	if d.center == nil {
		return
	}
	if err := d.center.Broadcast(ctx, &notify.SendMsg{
		Channel:   action,
		SessionID: d.session.ID(),
		Data:      data,
	}); err != nil {
		logger.Warnf(ctx, "dashboard %s broadcast %s err: %v", d.session.ID(), action, err)
	}
}

// credential reads the token at the start of an action. A missing or expired
// token ends the session; a store failure does not.
func (d *dashboardImpl) credential(ctx context.Context) (string, error) {
	token, err := d.session.Credential(ctx)
	if err != nil {
		if code.IsAuth(err) {
			d.terminate(ctx)
		} else {
			logger.Errorf(ctx, "dashboard %s read credential err: %+v", d.session.ID(), err)
		}
		return "", err
	}
	return token, nil
}

func (d *dashboardImpl) terminate(ctx context.Context) {
	if err := d.session.Terminate(ctx); err != nil {
		logger.Errorf(ctx, "dashboard %s terminate session err: %+v", d.session.ID(), err)
	}
	d.mu.Lock()
	already := d.terminated
	d.terminated = true
	d.mu.Unlock()
	if !already {
		logger.Infof(ctx, "dashboard %s session terminated", d.session.ID())
		d.broadcast(ctx, notify.SessionTerminated, nil)
	}
}

// fail converts a service error into a notification. Auth errors end the
// session; a distinguished cause (already shared) keeps its own message.
func (d *dashboardImpl) fail(ctx context.Context, err error, generic string) (*core.Snapshot, error) {
	switch {
	case code.IsAuth(err):
		d.toast.Show(msgSessionExpire, notify.Error)
		d.terminate(ctx)
	case code.Of(err) == code.CompoundAlreadySharedErr:
		d.toast.Show(code.CompoundAlreadySharedErr.String(), notify.Error)
	default:
		d.toast.Show(generic, notify.Error)
	}
	return d.Snapshot(), err
}

// reject refuses an action before any network call.
func (d *dashboardImpl) reject(c code.ErrCode) (*core.Snapshot, error) {
	d.toast.Show(c.String(), notify.Error)
	return d.Snapshot(), c
}

// discarded reports a result that arrived after Close.
func (d *dashboardImpl) discarded(ctx context.Context, action string) (*core.Snapshot, error) {
	logger.Infof(ctx, "dashboard %s closed, discard %s result", d.session.ID(), action)
	return nil, code.DashboardClosedErr
}

func (d *dashboardImpl) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Mount loads the collection and the user directory. Concurrent callers wait
// for the first one; once mounted it returns the current state.
func (d *dashboardImpl) Mount(ctx context.Context) (*core.Snapshot, error) {
	d.mountMu.Lock()
	defer d.mountMu.Unlock()

	d.mu.Lock()
	closed, mounted := d.closed, d.mounted
	d.mu.Unlock()
	if closed {
		return nil, code.DashboardClosedErr
	}
	if mounted {
		return d.Snapshot(), nil
	}

	token, err := d.credential(ctx)
	if err != nil {
		if code.IsAuth(err) {
			return d.Snapshot(), err
		}
		return d.fail(ctx, err, code.CompoundQueryErr.String())
	}

	var authErr error
	eg := &errgroup.Group{}
	eg.Go(func() error {
		compounds, err := d.compounds.ListCompounds(ctx, token)
		if err != nil {
			logger.Errorf(ctx, "dashboard %s mount list compounds err: %+v", d.session.ID(), err)
			if code.IsAuth(err) {
				authErr = err
				return nil
			}
			d.toast.Show(code.CompoundQueryErr.String(), notify.Error)
			return nil
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.closed {
			return nil
		}
		for _, c := range compounds {
			if c != nil {
				d.appendLocked(*c)
			}
		}
		return nil
	})
	eg.Go(func() error {
		users, err := d.compounds.ListUsers(ctx, token)
		if err != nil {
			logger.Errorf(ctx, "dashboard %s mount list users err: %+v", d.session.ID(), err)
			d.toast.Show(code.UserQueryErr.String(), notify.Error)
			return nil
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.closed {
			return nil
		}
		d.users = d.users[:0]
		for _, u := range users {
			if u != nil {
				d.users = append(d.users, *u)
			}
		}
		return nil
	})
	_ = eg.Wait()

	if d.isClosed() {
		return d.discarded(ctx, "mount")
	}
	if authErr != nil {
		return d.fail(ctx, authErr, code.CompoundQueryErr.String())
	}

	d.mu.Lock()
	d.mounted = true
	d.mu.Unlock()
	return d.Snapshot(), nil
}

func (d *dashboardImpl) SetQuery(_ context.Context, query string) (*core.Snapshot, error) {
	d.mu.Lock()
	d.query = query
	if strings.TrimSpace(query) == "" {
		d.preview = nil
	}
	d.mu.Unlock()
	return d.Snapshot(), nil
}

func (d *dashboardImpl) Search(ctx context.Context) (*core.Snapshot, error) {
	d.mu.Lock()
	structure := strings.TrimSpace(d.query)
	if structure == "" {
		d.preview = nil
		d.mu.Unlock()
		return d.reject(code.EmptyQueryErr)
	}
	if d.indexByStructureLocked(structure) >= 0 {
		d.preview = nil
		d.mu.Unlock()
		return d.reject(code.DuplicateCompoundErr)
	}
	d.mu.Unlock()

	name := d.names.LookupName(ctx, structure)
	markup := render.Safe(ctx, d.renderer, structure)
	key, err := uuid.NewV7()
	if err != nil {
		key = uuid.Must(uuid.NewV4())
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return d.discarded(ctx, "search")
	}
	if strings.TrimSpace(d.query) != structure {
		d.mu.Unlock()
		logger.Infof(ctx, "dashboard %s query changed during lookup, drop preview of %s", d.session.ID(), structure)
		return d.Snapshot(), nil
	}
	if d.indexByStructureLocked(structure) >= 0 {
		d.preview = nil
		d.mu.Unlock()
		return d.reject(code.DuplicateCompoundErr)
	}
	d.preview = &core.Preview{
		Key:       key,
		Name:      name,
		Structure: structure,
		Markup:    markup,
	}
	d.mu.Unlock()
	return d.Snapshot(), nil
}

func (d *dashboardImpl) Save(ctx context.Context) (*core.Snapshot, error) {
	d.mu.Lock()
	if d.preview == nil {
		d.mu.Unlock()
		return d.reject(code.NoSearchResultErr)
	}
	p := *d.preview
	d.mu.Unlock()

	token, err := d.credential(ctx)
	if err != nil {
		return d.fail(ctx, err, code.CompoundCreateErr.String())
	}

	created, err := d.compounds.CreateCompound(ctx, &model.CompoundReq{
		Name:      p.Name,
		Structure: p.Structure,
	}, token)
	if err != nil {
		if d.isClosed() {
			return d.discarded(ctx, "save")
		}
		return d.fail(ctx, err, code.CompoundCreateErr.String())
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return d.discarded(ctx, "save")
	}
	d.appendLocked(*created)
	d.preview = nil
	d.query = ""
	d.mu.Unlock()

	logger.Infof(ctx, "dashboard %s saved compound id: %d", d.session.ID(), created.ID)
	d.toast.Show(msgSaved, notify.Success)
	return d.Snapshot(), nil
}

func (d *dashboardImpl) Delete(ctx context.Context, id int64) (*core.Snapshot, error) {
	d.mu.Lock()
	found := d.indexByIDLocked(id) >= 0
	d.mu.Unlock()
	if !found {
		return d.reject(code.CompoundNotFound)
	}

	token, err := d.credential(ctx)
	if err != nil {
		return d.fail(ctx, err, code.CompoundDeleteErr.String())
	}

	if err := d.compounds.DeleteCompound(ctx, id, token); err != nil {
		if d.isClosed() {
			return d.discarded(ctx, "delete")
		}
		return d.fail(ctx, err, code.CompoundDeleteErr.String())
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return d.discarded(ctx, "delete")
	}
	if i := d.indexByIDLocked(id); i >= 0 {
		d.collection = append(d.collection[:i], d.collection[i+1:]...)
	}
	d.mu.Unlock()

	if t := d.share.Target(); t != nil && t.ID == id {
		d.share.Close()
	}
	logger.Infof(ctx, "dashboard %s deleted compound id: %d", d.session.ID(), id)
	d.toast.Show(msgDeleted, notify.Success)
	return d.Snapshot(), nil
}

func (d *dashboardImpl) ShareIntent(_ context.Context, id int64) (*core.Snapshot, error) {
	d.mu.Lock()
	i := d.indexByIDLocked(id)
	if i < 0 {
		d.mu.Unlock()
		return d.reject(code.CompoundNotFound)
	}
	target := d.collection[i]
	d.mu.Unlock()

	d.share.Open(target)
	return d.Snapshot(), nil
}

func (d *dashboardImpl) SelectUser(_ context.Context, userID int64) (*core.Snapshot, error) {
	d.mu.Lock()
	var (
		user  model.User
		found bool
	)
	for _, u := range d.users {
		if u.ID == userID {
			user, found = u, true
			break
		}
	}
	d.mu.Unlock()
	if !found {
		return d.reject(code.UserNotFound)
	}
	if err := d.share.Select(user); err != nil {
		return d.reject(code.Of(err))
	}
	return d.Snapshot(), nil
}

func (d *dashboardImpl) ShareConfirm(ctx context.Context) (*core.Snapshot, error) {
	target := d.share.Target()
	if target == nil {
		return d.reject(code.DialogClosedErr)
	}
	user := d.share.Selected()
	if user == nil {
		return d.reject(code.NoUserSelectedErr)
	}

	token, err := d.credential(ctx)
	if err != nil {
		return d.fail(ctx, err, code.CompoundShareErr.String())
	}

	if _, err := d.compounds.ShareCompound(ctx, target.ID, user.ID, token); err != nil {
		if d.isClosed() {
			return d.discarded(ctx, "share")
		}
		return d.fail(ctx, err, code.CompoundShareErr.String())
	}
	if d.isClosed() {
		return d.discarded(ctx, "share")
	}

	// the user may have reopened the dialog for another compound meanwhile
	if t := d.share.Target(); t != nil && t.ID == target.ID {
		d.share.Close()
	}
	logger.Infof(ctx, "dashboard %s shared compound id: %d with user id: %d", d.session.ID(), target.ID, user.ID)
	d.toast.Show(msgShared, notify.Success)
	return d.Snapshot(), nil
}

func (d *dashboardImpl) ShareCancel(_ context.Context) (*core.Snapshot, error) {
	d.share.Close()
	return d.Snapshot(), nil
}

func (d *dashboardImpl) Dismiss(_ context.Context) (*core.Snapshot, error) {
	d.toast.Dismiss()
	return d.Snapshot(), nil
}

func (d *dashboardImpl) Logout(ctx context.Context) error {
	d.terminate(ctx)
	d.Close(ctx)
	return nil
}

func (d *dashboardImpl) Close(_ context.Context) {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.toast.Stop()
	d.share.Close()
}

func (d *dashboardImpl) Terminated() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.terminated
}

func (d *dashboardImpl) Snapshot() *core.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := &core.Snapshot{
		SessionID:    d.session.ID(),
		Compounds:    make([]core.Entry, 0, len(d.collection)),
		Users:        append([]model.User{}, d.users...),
		Query:        d.query,
		Dialog:       d.share.State(),
		Notification: d.toast.Current(),
		Mounted:      d.mounted,
		Terminated:   d.terminated,
	}
	for _, c := range d.collection {
		snap.Compounds = append(snap.Compounds, core.Entry{Compound: c, Markup: d.markupLocked(c.Structure)})
	}
	if d.preview != nil {
		p := *d.preview
		snap.SearchResult = &p
	}
	return snap
}

// markupLocked memoises depictions; rendering is pure so structure is a
// sufficient key.
func (d *dashboardImpl) markupLocked(structure string) render.Markup {
	if m, ok := d.markups[structure]; ok {
		return m
	}
	m := render.Safe(context.Background(), d.renderer, structure)
	d.markups[structure] = m
	return m
}

// appendLocked adds c unless its id is already present, in which case the
// server's copy replaces the local one.
func (d *dashboardImpl) appendLocked(c model.Compound) {
	if i := d.indexByIDLocked(c.ID); i >= 0 {
		d.collection[i] = c
		return
	}
	d.collection = append(d.collection, c)
}

func (d *dashboardImpl) indexByIDLocked(id int64) int {
	for i, c := range d.collection {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (d *dashboardImpl) indexByStructureLocked(structure string) int {
	for i, c := range d.collection {
		if c.Structure == structure {
			return i
		}
	}
	return -1
}
