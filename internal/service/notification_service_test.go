package service

import (
	"CampusLink/internal/model"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeNotifRepo struct {
	mu        sync.Mutex
	nextID    uint64
	rows      map[uint64]*model.Notification
	createErr error
	batchErr  error
	readCalls int
}

func newFakeNotifRepo() *fakeNotifRepo {
	return &fakeNotifRepo{rows: map[uint64]*model.Notification{}}
}

func (f *fakeNotifRepo) Create(_ context.Context, n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	n.ID = f.nextID
	f.rows[n.ID] = n
	return nil
}

func (f *fakeNotifRepo) CreateBatch(ctx context.Context, ns []*model.Notification) error {
	if f.batchErr != nil {
		return f.batchErr
	}
	for _, n := range ns {
		if err := f.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeNotifRepo) GetByID(_ context.Context, id uint64) (*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.rows[id]
	if !ok || n.IsDelete {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNotifRepo) List(_ context.Context, userID uint64, unreadOnly bool, _, _ int) ([]*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []*model.Notification
	for _, n := range f.rows {
		if n.UserID != userID || n.IsDelete {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		res = append(res, n)
	}
	return res, nil
}

func (f *fakeNotifRepo) UnreadCount(_ context.Context, userID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.rows {
		if n.UserID == userID && !n.IsRead && !n.IsDelete {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotifRepo) MarkRead(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readCalls++
	if n, ok := f.rows[id]; ok {
		n.IsRead = true
	}
	return nil
}

func (f *fakeNotifRepo) MarkAllRead(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.rows {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeNotifRepo) SoftDelete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.rows[id]; ok {
		n.IsDelete = true
	}
	return nil
}

func (f *fakeNotifRepo) PurgeDeleted(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeNotifRepo) countForUser(userID uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.rows {
		if n.UserID == userID && !n.IsDelete {
			count++
		}
	}
	return count
}

type fakeRolesRepo struct {
	usersByRole map[string][]uint64
	err         error
}

func (f *fakeRolesRepo) GetUserRoles(_ context.Context, _ uint64) ([]*model.Role, error) {
	return nil, nil
}

func (f *fakeRolesRepo) GetUserIDsByRoles(_ context.Context, roleNames []string) ([]uint64, error) {
	if f.err != nil {
		return nil, f.err
	}
	seen := map[uint64]struct{}{}
	var res []uint64
	for _, role := range roleNames {
		for _, uid := range f.usersByRole[role] {
			if _, ok := seen[uid]; ok {
				continue
			}
			seen[uid] = struct{}{}
			res = append(res, uid)
		}
	}
	return res, nil
}

func newNotifService(t *testing.T) (NotificationService, *fakeNotifRepo, *fakeRolesRepo, *fakeBus) {
	t.Helper()
	notifRepo := newFakeNotifRepo()
	rolesRepo := &fakeRolesRepo{usersByRole: map[string][]uint64{
		"BUS_OPERATOR": {10, 11, 12},
		"SUPER_ADMIN":  {1},
	}}
	bus := newFakeBus()
	svc := NewNotificationService(notifRepo, rolesRepo, bus)
	return svc, notifRepo, rolesRepo, bus
}

func TestNotify_Validation(t *testing.T) {
	svc, _, _, _ := newNotifService(t)
	ctx := context.Background()

	_, err := svc.Notify(ctx, 0, "title", "message", "")
	assert.ErrorIs(t, err, ErrParamInvalid)
	_, err = svc.Notify(ctx, 1, " ", "message", "")
	assert.ErrorIs(t, err, ErrParamInvalid)
	_, err = svc.Notify(ctx, 1, "title", "", "")
	assert.ErrorIs(t, err, ErrParamInvalid)
}

func TestNotify_StoreThenPush(t *testing.T) {
	svc, notifRepo, _, bus := newNotifService(t)

	d, err := svc.Notify(context.Background(), 7, "库存提醒", "你的订单已出餐", model.NotificationTypeOrder)
	require.NoError(t, err)
	assert.NotZero(t, d.ID)
	assert.Equal(t, 1, notifRepo.countForUser(7))

	events := bus.userEvents[7]
	require.Len(t, events, 1)
	assert.Equal(t, "notification", events[0].Event)
}

func TestNotify_PushFailureStillSucceeds(t *testing.T) {
	svc, notifRepo, _, bus := newNotifService(t)
	bus.err = assert.AnError

	d, err := svc.Notify(context.Background(), 7, "title", "message", "")
	require.NoError(t, err)
	assert.NotZero(t, d.ID)
	assert.Equal(t, 1, notifRepo.countForUser(7), "row must survive a failed push")
}

func TestNotify_StoreFailureMeansNoPush(t *testing.T) {
	svc, notifRepo, _, bus := newNotifService(t)
	notifRepo.createErr = assert.AnError

	_, err := svc.Notify(context.Background(), 7, "title", "message", "")
	require.Error(t, err)
	assert.Zero(t, bus.userEventCount(7), "nothing may be pushed without a stored row")
}

func TestNotify_UnknownTypeFallsBackToInfo(t *testing.T) {
	svc, notifRepo, _, _ := newNotifService(t)

	d, err := svc.Notify(context.Background(), 7, "title", "message", "SPAM")
	require.NoError(t, err)
	assert.Equal(t, model.NotificationTypeInfo, notifRepo.rows[d.ID].Type)
}

func TestNotifyMany_EmptyRecipientsIsNoop(t *testing.T) {
	svc, notifRepo, _, _ := newNotifService(t)
	require.NoError(t, svc.NotifyMany(context.Background(), nil, "title", "message", ""))
	assert.Empty(t, notifRepo.rows)
}

func TestNotifyMany_OneRowAndOnePushPerRecipient(t *testing.T) {
	svc, notifRepo, _, bus := newNotifService(t)

	err := svc.NotifyMany(context.Background(), []uint64{4, 5, 6}, "title", "message", "")
	require.NoError(t, err)
	for _, uid := range []uint64{4, 5, 6} {
		assert.Equal(t, 1, notifRepo.countForUser(uid))
		assert.Equal(t, 1, bus.userEventCount(uid))
	}
}

func TestNotifyMany_BatchFailureMeansNoPush(t *testing.T) {
	svc, notifRepo, _, bus := newNotifService(t)
	notifRepo.batchErr = assert.AnError

	err := svc.NotifyMany(context.Background(), []uint64{4, 5}, "title", "message", "")
	assert.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, bus.userEventCount(4))
	assert.Zero(t, bus.userEventCount(5))
}

func TestNotifyByRole_FansOutToEachHolder(t *testing.T) {
	svc, notifRepo, _, bus := newNotifService(t)

	count, err := svc.NotifyByRole(context.Background(), []string{"BUS_OPERATOR"}, "班车紧急事件", "3 号线故障", model.NotificationTypeBusAlert)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	for _, uid := range []uint64{10, 11, 12} {
		assert.Equal(t, 1, notifRepo.countForUser(uid))
		assert.Equal(t, 1, bus.userEventCount(uid))
	}
}

func TestNotifyByRole_NoHoldersIsZeroNotError(t *testing.T) {
	svc, notifRepo, _, _ := newNotifService(t)

	count, err := svc.NotifyByRole(context.Background(), []string{"LIBRARIAN"}, "title", "message", "")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, notifRepo.rows)
}

func TestNotifyByRole_MultipleRolesDeduplicated(t *testing.T) {
	svc, _, rolesRepo, _ := newNotifService(t)
	rolesRepo.usersByRole["SUPER_ADMIN"] = []uint64{10} // also a bus operator

	count, err := svc.NotifyByRole(context.Background(), []string{"BUS_OPERATOR", "SUPER_ADMIN"}, "title", "message", "")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMarkRead_Ownership(t *testing.T) {
	svc, _, _, _ := newNotifService(t)
	ctx := context.Background()

	d, err := svc.Notify(ctx, 7, "title", "message", "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkRead(ctx, 8, d.ID), ErrNotOwner)
	assert.ErrorIs(t, svc.MarkRead(ctx, 7, 999), ErrNotificationNotFound)
	assert.NoError(t, svc.MarkRead(ctx, 7, d.ID))
}

func TestMarkRead_AlreadyReadIsNoop(t *testing.T) {
	svc, notifRepo, _, _ := newNotifService(t)
	ctx := context.Background()

	d, err := svc.Notify(ctx, 7, "title", "message", "")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, 7, d.ID))
	require.NoError(t, svc.MarkRead(ctx, 7, d.ID))
	assert.Equal(t, 1, notifRepo.readCalls)
}

func TestDelete_SoftAndOwned(t *testing.T) {
	svc, notifRepo, _, _ := newNotifService(t)
	ctx := context.Background()

	d, err := svc.Notify(ctx, 7, "title", "message", "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, 8, d.ID), ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, 7, d.ID))
	assert.True(t, notifRepo.rows[d.ID].IsDelete)

	// deleted rows are invisible afterwards
	assert.ErrorIs(t, svc.MarkRead(ctx, 7, d.ID), ErrNotificationNotFound)
}

func TestUnreadCount_TracksReadState(t *testing.T) {
	svc, notifRepo, _, _ := newNotifService(t)
	ctx := context.Background()

	first, err := svc.Notify(ctx, 7, "a", "b", "")
	require.NoError(t, err)
	_, err = svc.Notify(ctx, 7, "c", "d", "")
	require.NoError(t, err)

	count, err := notifRepo.UnreadCount(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, svc.MarkRead(ctx, 7, first.ID))
	count, _ = notifRepo.UnreadCount(ctx, 7)
	assert.EqualValues(t, 1, count)

	require.NoError(t, svc.MarkAllRead(ctx, 7))
	count, _ = notifRepo.UnreadCount(ctx, 7)
	assert.Zero(t, count)
}
