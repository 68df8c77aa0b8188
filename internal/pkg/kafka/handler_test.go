package kafka

import (
	"CampusLink/internal/api/dto"
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	err        error
	notified   []uint64
	manyCalls  [][]uint64
	roleCalls  [][]string
	roleResult int
}

func (f *fakeNotifier) Notify(_ context.Context, userID uint64, _, _, _ string) (*dto.NotificationDTO, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.notified = append(f.notified, userID)
	return &dto.NotificationDTO{ID: uint64(len(f.notified))}, nil
}

func (f *fakeNotifier) NotifyMany(_ context.Context, userIDs []uint64, _, _, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.manyCalls = append(f.manyCalls, userIDs)
	return nil
}

func (f *fakeNotifier) NotifyByRole(_ context.Context, roleNames []string, _, _, _ string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.roleCalls = append(f.roleCalls, roleNames)
	return f.roleResult, nil
}

func (f *fakeNotifier) List(_ context.Context, _ uint64, _ bool, _, _ int) ([]*dto.NotificationDTO, error) {
	return nil, nil
}
func (f *fakeNotifier) MarkRead(_ context.Context, _, _ uint64) error { return nil }
func (f *fakeNotifier) MarkAllRead(_ context.Context, _ uint64) error { return nil }
func (f *fakeNotifier) Delete(_ context.Context, _, _ uint64) error   { return nil }

type fakeEventBus struct {
	userEvents map[uint64][]string
	roleEvents []string
}

func newFakeEventBus() *fakeEventBus {
	return &fakeEventBus{userEvents: map[uint64][]string{}}
}

func (f *fakeEventBus) PublishToConversation(_ context.Context, _ uint64, _ string, _ interface{}) error {
	return nil
}

func (f *fakeEventBus) PublishToUser(_ context.Context, userID uint64, event string, _ interface{}) error {
	f.userEvents[userID] = append(f.userEvents[userID], event)
	return nil
}

func (f *fakeEventBus) PublishToRoles(_ context.Context, _ []string, event string, _ interface{}) error {
	f.roleEvents = append(f.roleEvents, event)
	return nil
}

func kafkaMsg(value string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Value: []byte(value)}
}

func TestOrderHandler_NotifiesOwnerAndPassesThrough(t *testing.T) {
	notifier := &fakeNotifier{}
	bus := newFakeEventBus()
	h := NewOrderHandler(notifier, bus)

	msg := kafkaMsg(`{"type":"ORDER_CREATED","payload":{"order_id":5,"user_id":7,"shop_name":"北门咖啡","status":"已接单"}}`)
	require.NoError(t, h.logic(context.Background(), msg))

	assert.Equal(t, []uint64{7}, notifier.notified)
	assert.Equal(t, []string{"new-order"}, bus.userEvents[7])
}

func TestOrderHandler_StatusEventsMapToMatchingPush(t *testing.T) {
	notifier := &fakeNotifier{}
	bus := newFakeEventBus()
	h := NewOrderHandler(notifier, bus)
	ctx := context.Background()

	require.NoError(t, h.logic(ctx, kafkaMsg(`{"type":"ORDER_STATUS_UPDATED","payload":{"user_id":7,"status":"制作中"}}`)))
	require.NoError(t, h.logic(ctx, kafkaMsg(`{"type":"ORDER_CANCELLED","payload":{"user_id":7,"status":"已取消"}}`)))

	assert.Equal(t, []string{"order-status-updated", "order-cancelled"}, bus.userEvents[7])
}

func TestOrderHandler_PoisonMessagesSkippedNotRetried(t *testing.T) {
	notifier := &fakeNotifier{}
	bus := newFakeEventBus()
	h := NewOrderHandler(notifier, bus)
	ctx := context.Background()

	// a nil error means the batch helper will not retry the message
	assert.NoError(t, h.logic(ctx, kafkaMsg(`not json at all`)))
	assert.NoError(t, h.logic(ctx, kafkaMsg(`{"type":"ORDER_CREATED","payload":"not an object"}`)))
	assert.NoError(t, h.logic(ctx, kafkaMsg(`{"type":"ORDER_CREATED","payload":{"order_id":5}}`)))
	assert.NoError(t, h.logic(ctx, kafkaMsg(`{"type":"ORDER_SHIPPED","payload":{"user_id":7}}`)))

	assert.Empty(t, notifier.notified)
	assert.Empty(t, bus.userEvents)
}

func TestOrderHandler_DownstreamFailureIsRetryable(t *testing.T) {
	notifier := &fakeNotifier{err: assert.AnError}
	h := NewOrderHandler(notifier, newFakeEventBus())

	msg := kafkaMsg(`{"type":"ORDER_CREATED","payload":{"user_id":7,"status":"已接单"}}`)
	assert.Error(t, h.logic(context.Background(), msg))
}

func TestBusHandler_EmergencyGoesToOperators(t *testing.T) {
	notifier := &fakeNotifier{roleResult: 2}
	bus := newFakeEventBus()
	h := NewBusScheduleHandler(notifier, bus)

	msg := kafkaMsg(`{"type":"BUS_EMERGENCY","payload":{"route_name":"3 号线","message":"车辆故障"}}`)
	require.NoError(t, h.logic(context.Background(), msg))

	require.Len(t, notifier.roleCalls, 1)
	assert.ElementsMatch(t, []string{"BUS_OPERATOR", "SUPER_ADMIN"}, notifier.roleCalls[0])
	assert.Equal(t, []string{"bus-emergency"}, bus.roleEvents)
}

func TestBusHandler_AlertFansOutToRecipients(t *testing.T) {
	notifier := &fakeNotifier{}
	bus := newFakeEventBus()
	h := NewBusScheduleHandler(notifier, bus)

	msg := kafkaMsg(`{"type":"BUS_ALERT","payload":{"route_name":"3 号线","message":"晚点 10 分钟","recipients":[4,5]}}`)
	require.NoError(t, h.logic(context.Background(), msg))

	require.Len(t, notifier.manyCalls, 1)
	assert.Equal(t, []uint64{4, 5}, notifier.manyCalls[0])
	assert.Equal(t, []string{"bus-alert"}, bus.userEvents[4])
	assert.Equal(t, []string{"bus-alert"}, bus.userEvents[5])
}

func TestBusHandler_PoisonMessagesSkippedNotRetried(t *testing.T) {
	notifier := &fakeNotifier{}
	bus := newFakeEventBus()
	h := NewBusScheduleHandler(notifier, bus)
	ctx := context.Background()

	assert.NoError(t, h.logic(ctx, kafkaMsg(`garbage`)))
	assert.NoError(t, h.logic(ctx, kafkaMsg(`{"type":"BUS_EMERGENCY","payload":{"route_name":"3 号线"}}`)))
	assert.NoError(t, h.logic(ctx, kafkaMsg(`{"type":"BUS_ALERT","payload":{"message":"晚点","recipients":[]}}`)))

	assert.Empty(t, notifier.roleCalls)
	assert.Empty(t, notifier.manyCalls)
}
