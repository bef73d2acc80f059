package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/scienceol/chemdash/pkg/common/code"
	core "github.com/scienceol/chemdash/pkg/core/dashboard"
	"github.com/scienceol/chemdash/pkg/core/notify"
	"github.com/scienceol/chemdash/pkg/core/render"
	"github.com/scienceol/chemdash/pkg/core/render/smiles"
	"github.com/scienceol/chemdash/pkg/repo/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu         sync.Mutex
	token      string
	err        error
	terminated int
}

func (s *fakeSession) ID() string { return "sess-1" }

func (s *fakeSession) Credential(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	if s.token == "" {
		return "", code.UnLogin
	}
	return s.token, nil
}

func (s *fakeSession) Terminate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.terminated++
	return nil
}

type fakeService struct {
	mu sync.Mutex

	compounds []*model.Compound
	users     []*model.User
	nextID    int64

	listErr   error
	usersErr  error
	createErr error
	deleteErr error
	shareErr  error

	// block, when set, holds every call until it is closed
	block chan struct{}

	calls   map[string]int
	created []*model.CompoundReq
	shares  [][2]int64
	tokens  []string
}

func newFakeService() *fakeService {
	return &fakeService{nextID: 7, calls: map[string]int{}}
}

func (f *fakeService) record(name, token string) {
	f.mu.Lock()
	f.calls[name]++
	f.tokens = append(f.tokens, token)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
}

func (f *fakeService) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeService) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeService) ListCompounds(_ context.Context, token string) ([]*model.Compound, error) {
	f.record("list", token)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.compounds, nil
}

func (f *fakeService) CreateCompound(_ context.Context, req *model.CompoundReq, token string) (*model.Compound, error) {
	f.record("create", token)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	c := &model.Compound{ID: f.nextID, Name: req.Name, Structure: req.Structure}
	f.nextID++
	return c, nil
}

func (f *fakeService) DeleteCompound(_ context.Context, _ int64, token string) error {
	f.record("delete", token)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeService) ListUsers(_ context.Context, token string) ([]*model.User, error) {
	f.record("users", token)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return f.users, nil
}

func (f *fakeService) ShareCompound(_ context.Context, compoundID, userID int64, token string) (*model.ShareAck, error) {
	f.record("share", token)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shares = append(f.shares, [2]int64{compoundID, userID})
	if f.shareErr != nil {
		return nil, f.shareErr
	}
	return &model.ShareAck{Message: "ok"}, nil
}

type fakeNames struct {
	mu    sync.Mutex
	names map[string]string
	calls int
	hook  func()
}

func (n *fakeNames) LookupName(_ context.Context, structure string) string {
	n.mu.Lock()
	n.calls++
	hook := n.hook
	name, ok := n.names[structure]
	n.mu.Unlock()
	if hook != nil {
		hook()
	}
	if !ok {
		return "Name Not Found"
	}
	return name
}

func (n *fakeNames) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

type fixture struct {
	ctl     core.Controller
	session *fakeSession
	svc     *fakeService
	names   *fakeNames
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		session: &fakeSession{token: "tok"},
		svc:     newFakeService(),
		names:   &fakeNames{names: map[string]string{"CCO": "ethanol", "c1ccccc1": "benzene"}},
	}
	f.ctl = New(Deps{
		Session:        f.session,
		Compounds:      f.svc,
		Names:          f.names,
		Renderer:       smiles.New(),
		NotifyDuration: time.Hour,
	})
	t.Cleanup(func() { f.ctl.Close(context.Background()) })
	return f
}

func (f *fixture) mounted(t *testing.T, compounds ...*model.Compound) {
	t.Helper()
	f.svc.compounds = compounds
	f.svc.users = []*model.User{{ID: 3, Username: "bob"}, {ID: 4, Username: "carol"}}
	_, err := f.ctl.Mount(context.Background())
	require.NoError(t, err)
}

func notification(t *testing.T, snap *core.Snapshot) notify.Notification {
	t.Helper()
	require.NotNil(t, snap.Notification)
	return *snap.Notification
}

func ids(snap *core.Snapshot) []int64 {
	out := make([]int64, 0, len(snap.Compounds))
	for _, c := range snap.Compounds {
		out = append(out, c.ID)
	}
	return out
}

func TestMount(t *testing.T) {
	f := newFixture(t)
	f.mounted(t, &model.Compound{ID: 1, Name: "water", Structure: "O"}, &model.Compound{ID: 2, Name: "ethanol", Structure: "CCO"})

	snap := f.ctl.Snapshot()
	assert.True(t, snap.Mounted)
	assert.Equal(t, []int64{1, 2}, ids(snap))
	assert.Len(t, snap.Users, 2)
	assert.Contains(t, string(snap.Compounds[1].Markup), "<svg")
	assert.Equal(t, 1, f.svc.count("list"))
	assert.Equal(t, 1, f.svc.count("users"))
	assert.Nil(t, snap.Notification)
}

func TestMountOnce(t *testing.T) {
	f := newFixture(t)
	f.svc.compounds = []*model.Compound{{ID: 1, Name: "water", Structure: "O"}}
	f.svc.users = []*model.User{{ID: 3, Username: "bob"}}
	gate := make(chan struct{})
	f.svc.block = gate

	ctx := context.Background()
	snaps := make([]*core.Snapshot, 2)
	wg := sync.WaitGroup{}
	for i := range snaps {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := f.ctl.Mount(ctx)
			assert.NoError(t, err)
			snaps[i] = snap
		}(i)
	}
	require.Eventually(t, func() bool { return f.svc.count("list") == 1 }, 2*time.Second, 5*time.Millisecond)
	f.svc.mu.Lock()
	f.svc.block = nil
	f.svc.mu.Unlock()
	close(gate)
	wg.Wait()

	for _, snap := range snaps {
		require.NotNil(t, snap)
		assert.True(t, snap.Mounted)
		assert.Equal(t, []int64{1}, ids(snap))
	}
	assert.Equal(t, 1, f.svc.count("list"))
	assert.Equal(t, 1, f.svc.count("users"))

	_, err := f.ctl.SetQuery(ctx, "CCO")
	require.NoError(t, err)
	_, err = f.ctl.Search(ctx)
	require.NoError(t, err)
	_, err = f.ctl.Save(ctx)
	require.NoError(t, err)

	// a later mount keeps what was saved since and does not refetch
	snap, err := f.ctl.Mount(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 7}, ids(snap))
	assert.Equal(t, 1, f.svc.count("list"))
}

func TestMountSessionStoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.svc.compounds = []*model.Compound{{ID: 1, Name: "water", Structure: "O"}}
	f.session.err = code.SessionStoreErr.WithMsg("connection refused")

	snap, err := f.ctl.Mount(context.Background())
	assert.ErrorIs(t, err, code.SessionStoreErr)
	assert.False(t, snap.Mounted)
	assert.False(t, snap.Terminated)
	assert.Equal(t, 0, f.session.terminated)
	assert.Equal(t, "Failed to fetch compounds", notification(t, snap).Message)
	assert.Zero(t, f.svc.total())

	// the next mount retries once the store is back
	f.session.mu.Lock()
	f.session.err = nil
	f.session.mu.Unlock()
	snap, err = f.ctl.Mount(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Mounted)
	assert.Equal(t, []int64{1}, ids(snap))
}

func TestMountWithoutCredential(t *testing.T) {
	f := newFixture(t)
	f.session.token = ""

	snap, err := f.ctl.Mount(context.Background())
	assert.ErrorIs(t, err, code.UnLogin)
	assert.True(t, snap.Terminated)
	assert.Zero(t, f.svc.total())
}

func TestMountUnauthorized(t *testing.T) {
	f := newFixture(t)
	f.svc.listErr = code.UnLogin
	f.svc.users = []*model.User{{ID: 3, Username: "bob"}}

	snap, err := f.ctl.Mount(context.Background())
	require.Error(t, err)
	assert.True(t, code.IsAuth(err))
	assert.True(t, snap.Terminated)
	assert.True(t, f.ctl.Terminated())
	assert.Equal(t, 1, f.session.terminated)
	assert.Equal(t, notify.Error, notification(t, snap).Severity)
}

func TestMountPartialFailure(t *testing.T) {
	t.Run("UsersFail", func(t *testing.T) {
		f := newFixture(t)
		f.svc.compounds = []*model.Compound{{ID: 1, Name: "water", Structure: "O"}}
		f.svc.usersErr = code.UserQueryErr

		snap, err := f.ctl.Mount(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, ids(snap))
		assert.Empty(t, snap.Users)
		assert.Equal(t, "Failed to fetch users", notification(t, snap).Message)
		assert.False(t, snap.Terminated)
	})

	t.Run("CompoundsFail", func(t *testing.T) {
		f := newFixture(t)
		f.svc.listErr = code.CompoundQueryErr
		f.svc.users = []*model.User{{ID: 3, Username: "bob"}}

		snap, err := f.ctl.Mount(context.Background())
		require.NoError(t, err)
		assert.Empty(t, snap.Compounds)
		assert.Len(t, snap.Users, 1)
		assert.Equal(t, "Failed to fetch compounds", notification(t, snap).Message)
	})
}

func TestSearchAndSaveEthanol(t *testing.T) {
	f := newFixture(t)
	f.mounted(t)
	ctx := context.Background()

	_, err := f.ctl.SetQuery(ctx, "CCO")
	require.NoError(t, err)
	snap, err := f.ctl.Search(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.SearchResult)
	assert.Equal(t, "ethanol", snap.SearchResult.Name)
	assert.Equal(t, "CCO", snap.SearchResult.Structure)
	assert.False(t, snap.SearchResult.Key.IsNil())
	assert.Contains(t, string(snap.SearchResult.Markup), "<svg")
	assert.Zero(t, f.svc.count("create"))

	snap, err = f.ctl.Save(ctx)
	require.NoError(t, err)
	require.Len(t, f.svc.created, 1)
	assert.Equal(t, &model.CompoundReq{Name: "ethanol", Structure: "CCO"}, f.svc.created[0])
	require.Len(t, snap.Compounds, 1)
	assert.Equal(t, model.Compound{ID: 7, Name: "ethanol", Structure: "CCO"}, snap.Compounds[0].Compound)
	assert.Nil(t, snap.SearchResult)
	assert.Empty(t, snap.Query)
	n := notification(t, snap)
	assert.Equal(t, notify.Success, n.Severity)
	assert.Equal(t, "Compound saved successfully", n.Message)
}

func TestSearchEmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		f := newFixture(t)
		f.mounted(t)
		ctx := context.Background()
		before := f.svc.total()

		_, _ = f.ctl.SetQuery(ctx, q)
		snap, err := f.ctl.Search(ctx)
		assert.ErrorIs(t, err, code.EmptyQueryErr)
		assert.Nil(t, snap.SearchResult)
		assert.Equal(t, before, f.svc.total())
		assert.Zero(t, f.names.count())
		assert.Equal(t, notify.Error, notification(t, snap).Severity)
	}
}

func TestQueryClearedDropsPreview(t *testing.T) {
	f := newFixture(t)
	f.mounted(t)
	ctx := context.Background()

	_, _ = f.ctl.SetQuery(ctx, "CCO")
	snap, err := f.ctl.Search(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.SearchResult)

	snap, _ = f.ctl.SetQuery(ctx, "")
	assert.Nil(t, snap.SearchResult)

	_, err = f.ctl.Save(ctx)
	assert.ErrorIs(t, err, code.NoSearchResultErr)
	assert.Zero(t, f.svc.count("create"))
}

func TestSearchDuplicate(t *testing.T) {
	f := newFixture(t)
	f.mounted(t, &model.Compound{ID: 7, Name: "ethanol", Structure: "CCO"})
	ctx := context.Background()
	before := f.svc.total()

	_, _ = f.ctl.SetQuery(ctx, "CCO")
	snap, err := f.ctl.Search(ctx)
	assert.ErrorIs(t, err, code.DuplicateCompoundErr)
	assert.Nil(t, snap.SearchResult)
	assert.Equal(t, "Compound already in dashboard", notification(t, snap).Message)
	assert.Zero(t, f.names.count())
	assert.Equal(t, before, f.svc.total())
}

func TestSearchQueryChangedDuringLookup(t *testing.T) {
	f := newFixture(t)
	f.mounted(t)
	ctx := context.Background()

	f.names.hook = func() { _, _ = f.ctl.SetQuery(ctx, "") }
	_, _ = f.ctl.SetQuery(ctx, "CCO")
	snap, err := f.ctl.Search(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap.SearchResult)
}

func TestSearchUnrenderableStillSaves(t *testing.T) {
	f := newFixture(t)
	f.mounted(t)
	ctx := context.Background()

	_, _ = f.ctl.SetQuery(ctx, "C1CC")
	snap, err := f.ctl.Search(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.SearchResult)
	assert.Equal(t, render.ErrorMarkup, snap.SearchResult.Markup)
	assert.Equal(t, "Name Not Found", snap.SearchResult.Name)

	snap, err = f.ctl.Save(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Compounds, 1)
	assert.Equal(t, render.ErrorMarkup, snap.Compounds[0].Markup)
}

func TestSaveFailureKeepsSearchResult(t *testing.T) {
	f := newFixture(t)
	f.mounted(t)
	ctx := context.Background()
	f.svc.createErr = code.CompoundCreateErr

	_, _ = f.ctl.SetQuery(ctx, "CCO")
	before, err := f.ctl.Search(ctx)
	require.NoError(t, err)

	snap, err := f.ctl.Save(ctx)
	assert.ErrorIs(t, err, code.CompoundCreateErr)
	assert.Empty(t, snap.Compounds)
	assert.Equal(t, before.SearchResult, snap.SearchResult)
	assert.Equal(t, "CCO", snap.Query)
	assert.Equal(t, "Failed to save compound", notification(t, snap).Message)

	// retry by invoking save again
	f.svc.mu.Lock()
	f.svc.createErr = nil
	f.svc.mu.Unlock()
	snap, err = f.ctl.Save(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Compounds, 1)
	assert.Equal(t, 2, f.svc.count("create"))
}

func TestSaveNeverDuplicatesIDs(t *testing.T) {
	f := newFixture(t)
	f.mounted(t)
	ctx := context.Background()

	for _, s := range []string{"CCO", "c1ccccc1", "O"} {
		_, _ = f.ctl.SetQuery(ctx, s)
		_, err := f.ctl.Search(ctx)
		require.NoError(t, err)
		_, err = f.ctl.Save(ctx)
		require.NoError(t, err)
	}

	// a duplicate success for an id already held
	f.svc.mu.Lock()
	f.svc.nextID = 8
	f.svc.mu.Unlock()
	_, _ = f.ctl.SetQuery(ctx, "N")
	_, err := f.ctl.Search(ctx)
	require.NoError(t, err)
	snap, err := f.ctl.Save(ctx)
	require.NoError(t, err)

	assert.Equal(t, []int64{7, 8, 9}, ids(snap))
	assert.Equal(t, "N", snap.Compounds[1].Structure)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	f.mounted(t, &model.Compound{ID: 7, Name: "ethanol", Structure: "CCO"}, &model.Compound{ID: 8, Name: "water", Structure: "O"})

	snap, err := f.ctl.Delete(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{8}, ids(snap))
	assert.Equal(t, "Compound deleted successfully", notification(t, snap).Message)
}

func TestDeleteFailurePreservesCollection(t *testing.T) {
	f := newFixture(t)
	f.mounted(t, &model.Compound{ID: 7, Name: "ethanol", Structure: "CCO"})
	f.svc.deleteErr = code.CompoundDeleteErr
	before := f.ctl.Snapshot()

	snap, err := f.ctl.Delete(context.Background(), 7)
	assert.ErrorIs(t, err, code.CompoundDeleteErr)
	assert.Equal(t, before.Compounds, snap.Compounds)
	n := notification(t, snap)
	assert.Equal(t, notify.Error, n.Severity)
	assert.Equal(t, "Failed to delete compound", n.Message)
}

func TestDeleteUnknownID(t *testing.T) {
	f := newFixture(t)
	f.mounted(t)

	_, err := f.ctl.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, code.CompoundNotFound)
	assert.Zero(t, f.svc.count("delete"))
}

func TestShare(t *testing.T) {
	f := newFixture(t)
	f.mounted(t, &model.Compound{ID: 7, Name: "ethanol", Structure: "CCO"})
	ctx := context.Background()

	snap, err := f.ctl.ShareIntent(ctx, 7)
	require.NoError(t, err)
	assert.True(t, snap.Dialog.Open)
	assert.Equal(t, int64(7), snap.Dialog.Target.ID)
	assert.Zero(t, f.svc.count("share"))

	_, err = f.ctl.SelectUser(ctx, 3)
	require.NoError(t, err)
	snap, err = f.ctl.ShareConfirm(ctx)
	require.NoError(t, err)
	assert.False(t, snap.Dialog.Open)
	assert.Equal(t, [][2]int64{{7, 3}}, f.svc.shares)
	assert.Equal(t, "Compound shared successfully", notification(t, snap).Message)
}

func TestShareRequiresSelection(t *testing.T) {
	f := newFixture(t)
	f.mounted(t, &model.Compound{ID: 7, Name: "ethanol", Structure: "CCO"})
	ctx := context.Background()

	_, err := f.ctl.ShareIntent(ctx, 7)
	require.NoError(t, err)
	snap, err := f.ctl.ShareConfirm(ctx)
	assert.ErrorIs(t, err, code.NoUserSelectedErr)
	assert.True(t, snap.Dialog.Open)
	assert.Zero(t, f.svc.count("share"))
}

func TestShareAlreadyShared(t *testing.T) {
	f := newFixture(t)
	f.mounted(t, &model.Compound{ID: 7, Name: "ethanol", Structure: "CCO"})
	ctx := context.Background()
	f.svc.shareErr = code.CompoundAlreadySharedErr.WithMsg("User already has this compound")

	_, _ = f.ctl.ShareIntent(ctx, 7)
	_, _ = f.ctl.SelectUser(ctx, 3)
	snap, err := f.ctl.ShareConfirm(ctx)
	assert.ErrorIs(t, err, code.CompoundAlreadySharedErr)
	assert.Equal(t, "User already has this compound", notification(t, snap).Message)
	assert.NotEqual(t, "Failed to share compound", notification(t, snap).Message)
	assert.True(t, snap.Dialog.Open)
}

func TestShareGenericFailureKeepsDialog(t *testing.T) {
	f := newFixture(t)
	f.mounted(t, &model.Compound{ID: 7, Name: "ethanol", Structure: "CCO"})
	ctx := context.Background()
	f.svc.shareErr = code.CompoundShareErr

	_, _ = f.ctl.ShareIntent(ctx, 7)
	_, _ = f.ctl.SelectUser(ctx, 3)
	snap, err := f.ctl.ShareConfirm(ctx)
	assert.ErrorIs(t, err, code.CompoundShareErr)
	assert.Equal(t, "Failed to share compound", notification(t, snap).Message)
	assert.True(t, snap.Dialog.Open)
	assert.Equal(t, int64(3), snap.Dialog.Selected.ID)
}

func TestShareCancel(t *testing.T) {
	f := newFixture(t)
	f.mounted(t, &model.Compound{ID: 7, Name: "ethanol", Structure: "CCO"})
	ctx := context.Background()

	_, _ = f.ctl.ShareIntent(ctx, 7)
	_, _ = f.ctl.SelectUser(ctx, 4)
	snap, err := f.ctl.ShareCancel(ctx)
	require.NoError(t, err)
	assert.False(t, snap.Dialog.Open)
	assert.Nil(t, snap.Dialog.Target)
	assert.Nil(t, snap.Dialog.Selected)

	_, err = f.ctl.SelectUser(ctx, 3)
	assert.ErrorIs(t, err, code.DialogClosedErr)
	_, err = f.ctl.SelectUser(ctx, 99)
	assert.ErrorIs(t, err, code.UserNotFound)
}

func TestActionAfterTokenExpired(t *testing.T) {
	f := newFixture(t)
	f.mounted(t, &model.Compound{ID: 7, Name: "ethanol", Structure: "CCO"})
	f.svc.deleteErr = code.UnLogin

	snap, err := f.ctl.Delete(context.Background(), 7)
	assert.True(t, code.IsAuth(err))
	assert.True(t, snap.Terminated)
	assert.Equal(t, []int64{7}, ids(snap))
	assert.Equal(t, 1, f.session.terminated)
}

func TestActionSessionStoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.mounted(t, &model.Compound{ID: 7, Name: "ethanol", Structure: "CCO"})
	f.session.mu.Lock()
	f.session.err = code.SessionStoreErr.WithMsg("connection refused")
	f.session.mu.Unlock()

	snap, err := f.ctl.Delete(context.Background(), 7)
	assert.ErrorIs(t, err, code.SessionStoreErr)
	assert.False(t, snap.Terminated)
	assert.False(t, f.ctl.Terminated())
	assert.Equal(t, 0, f.session.terminated)
	assert.Equal(t, []int64{7}, ids(snap))
	assert.Equal(t, "Failed to delete compound", notification(t, snap).Message)
	assert.Zero(t, f.svc.count("delete"))
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.mounted(t)
	before := f.svc.total()

	require.NoError(t, f.ctl.Logout(context.Background()))
	assert.True(t, f.ctl.Terminated())
	_, err := f.session.Credential(context.Background())
	assert.Error(t, err)
	assert.Equal(t, before, f.svc.total())
}

func TestDismiss(t *testing.T) {
	f := newFixture(t)
	f.mounted(t)
	ctx := context.Background()

	snap, _ := f.ctl.Search(ctx)
	require.NotNil(t, snap.Notification)
	snap, err := f.ctl.Dismiss(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap.Notification)
}

func TestCloseDiscardsInFlightResult(t *testing.T) {
	f := newFixture(t)
	f.mounted(t)
	ctx := context.Background()

	_, _ = f.ctl.SetQuery(ctx, "CCO")
	_, err := f.ctl.Search(ctx)
	require.NoError(t, err)

	block := make(chan struct{})
	f.svc.mu.Lock()
	f.svc.block = block
	f.svc.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := f.ctl.Save(ctx)
		done <- err
	}()

	require.Eventually(t, func() bool { return f.svc.count("create") == 1 }, time.Second, 5*time.Millisecond)
	f.ctl.Close(ctx)
	close(block)

	assert.ErrorIs(t, <-done, code.DashboardClosedErr)
	snap := f.ctl.Snapshot()
	assert.Empty(t, snap.Compounds)
	assert.NotNil(t, snap.SearchResult)
}

type recordingCenter struct {
	mu   sync.Mutex
	msgs []*notify.SendMsg
}

func (r *recordingCenter) Registry(context.Context, notify.Action, notify.HandleFunc) error {
	return nil
}

func (r *recordingCenter) Broadcast(_ context.Context, msg *notify.SendMsg) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recordingCenter) Close(context.Context) error { return nil }

func (r *recordingCenter) actions() []notify.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Action, 0, len(r.msgs))
	for _, m := range r.msgs {
		out = append(out, m.Channel)
	}
	return out
}

func TestEventsPublished(t *testing.T) {
	center := &recordingCenter{}
	session := &fakeSession{token: "tok"}
	svc := newFakeService()
	svc.listErr = code.UnLogin
	ctl := New(Deps{
		Session:        session,
		Compounds:      svc,
		Names:          &fakeNames{},
		Renderer:       smiles.New(),
		Center:         center,
		NotifyDuration: time.Hour,
	})
	defer ctl.Close(context.Background())

	_, err := ctl.Mount(context.Background())
	require.Error(t, err)

	assert.Equal(t, []notify.Action{notify.NotificationShown, notify.SessionTerminated}, center.actions())
	center.mu.Lock()
	defer center.mu.Unlock()
	for _, m := range center.msgs {
		assert.Equal(t, "sess-1", m.SessionID)
	}
}
