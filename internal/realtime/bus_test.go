package realtime

import (
	"CampusLink/internal/model"
	"context"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu        sync.Mutex
	frames    map[string][][]byte
	failRooms map[string]bool
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{
		frames:    map[string][][]byte{},
		failRooms: map[string]bool{},
	}
}

func (f *fakePublisher) Publish(_ context.Context, room string, frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRooms[room] {
		return assert.AnError
	}
	f.frames[room] = append(f.frames[room], frame)
	return nil
}

func (f *fakePublisher) framesFor(room string) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames[room]
}

type stubRolesRepo struct {
	userIDs []uint64
	err     error
}

func (s *stubRolesRepo) GetUserRoles(_ context.Context, _ uint64) ([]*model.Role, error) {
	return nil, nil
}

func (s *stubRolesRepo) GetUserIDsByRoles(_ context.Context, _ []string) ([]uint64, error) {
	return s.userIDs, s.err
}

func decodeFrame(t *testing.T, data []byte) *Frame {
	t.Helper()
	var f Frame
	require.NoError(t, json.Unmarshal(data, &f))
	return &f
}

func TestBus_PublishToConversation(t *testing.T) {
	pub := newFakePublisher()
	bus := NewBus(pub, &stubRolesRepo{})

	err := bus.PublishToConversation(context.Background(), 7, EventNewMessage, map[string]string{"content": "hi"})
	require.NoError(t, err)

	frames := pub.framesFor(ConversationRoom(7))
	require.Len(t, frames, 1)
	assert.Equal(t, EventNewMessage, decodeFrame(t, frames[0]).Event)
}

func TestBus_PublishToUser(t *testing.T) {
	pub := newFakePublisher()
	bus := NewBus(pub, &stubRolesRepo{})

	err := bus.PublishToUser(context.Background(), 9, EventNotification, nil)
	require.NoError(t, err)

	frames := pub.framesFor(UserRoom(9))
	require.Len(t, frames, 1)
	assert.Equal(t, EventNotification, decodeFrame(t, frames[0]).Event)
}

func TestBus_PublishToRoles_UsesPersonalRooms(t *testing.T) {
	pub := newFakePublisher()
	bus := NewBus(pub, &stubRolesRepo{userIDs: []uint64{1, 2, 3}})

	err := bus.PublishToRoles(context.Background(), []string{"BUS_OPERATOR"}, EventBusEmergency, nil)
	require.NoError(t, err)

	for _, uid := range []uint64{1, 2, 3} {
		assert.Len(t, pub.framesFor(UserRoom(uid)), 1)
	}
	// audience resolved at publish time; no shared role-wide room exists
	assert.Empty(t, pub.framesFor("role:BUS_OPERATOR"))
}

func TestBus_PublishToRoles_NoHoldersIsNotError(t *testing.T) {
	pub := newFakePublisher()
	bus := NewBus(pub, &stubRolesRepo{})

	err := bus.PublishToRoles(context.Background(), []string{"LIBRARIAN"}, EventBusAlert, nil)
	assert.NoError(t, err)
	assert.Empty(t, pub.frames)
}

func TestBus_PublishToRoles_RecipientFailuresIsolated(t *testing.T) {
	pub := newFakePublisher()
	pub.failRooms[UserRoom(2)] = true
	bus := NewBus(pub, &stubRolesRepo{userIDs: []uint64{1, 2, 3}})

	err := bus.PublishToRoles(context.Background(), []string{"BUS_OPERATOR"}, EventBusEmergency, nil)
	require.NoError(t, err, "one broken recipient must not fail the fan-out")
	assert.Len(t, pub.framesFor(UserRoom(1)), 1)
	assert.Len(t, pub.framesFor(UserRoom(3)), 1)
}

func TestBus_PublishToRoles_ResolveFailure(t *testing.T) {
	pub := newFakePublisher()
	bus := NewBus(pub, &stubRolesRepo{err: assert.AnError})

	err := bus.PublishToRoles(context.Background(), []string{"BUS_OPERATOR"}, EventBusEmergency, nil)
	assert.Error(t, err)
	assert.Empty(t, pub.frames)
}
