package consumer

import (
	"context"
	"sync"
	"testing"
	"time"

	"alertaja/internal/models"
	"alertaja/internal/mqttbridge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSubscriber struct {
	mu           sync.Mutex
	handlers     map[string]mqttbridge.MessageHandler
	unsubscribed []string
}

func (f *fakeSubscriber) Subscribe(topic string, qos byte, handler mqttbridge.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = handler
	return nil
}

func (f *fakeSubscriber) handler(topic string) mqttbridge.MessageHandler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handlers[topic]
}

func (f *fakeSubscriber) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

func (f *fakeSubscriber) Unsubscribe(topics ...string) error {
	f.unsubscribed = append(f.unsubscribed, topics...)
	return nil
}

type fakeGuard struct {
	inputs    []models.InputEvent
	triggers  int
	cancels   int
	locks     int
	disguises []models.DisguiseType
	calls     []string
	messages  []string
	stations  []string
	emergency []string
}

func (g *fakeGuard) HandleInput(ev models.InputEvent) bool {
	g.inputs = append(g.inputs, ev)
	return false
}

func (g *fakeGuard) TriggerSOS(ctx context.Context) bool {
	g.triggers++
	return true
}

func (g *fakeGuard) CancelSOS() bool {
	g.cancels++
	return false
}

func (g *fakeGuard) Lock() {
	g.locks++
}

func (g *fakeGuard) SetDisguise(ctx context.Context, d models.DisguiseType) error {
	g.disguises = append(g.disguises, d)
	return nil
}

func (g *fakeGuard) CallContact(ctx context.Context, id string) (bool, error) {
	g.calls = append(g.calls, id)
	return true, nil
}

func (g *fakeGuard) MessageContact(ctx context.Context, id string) (bool, error) {
	g.messages = append(g.messages, id)
	return true, nil
}

func (g *fakeGuard) CallStation(ctx context.Context, id string) (bool, error) {
	g.stations = append(g.stations, id)
	return true, nil
}

func (g *fakeGuard) CallEmergency(ctx context.Context, service string) (bool, error) {
	g.emergency = append(g.emergency, service)
	return true, nil
}

func startConsumer(t *testing.T) (*fakeSubscriber, *fakeGuard, *InputConsumer) {
	sub := &fakeSubscriber{handlers: map[string]mqttbridge.MessageHandler{}}
	g := &fakeGuard{}
	c := NewInputConsumer(sub, g, "alertaja/device", 1, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return sub.count() == 2 }, time.Second, 5*time.Millisecond)
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return sub, g, c
}

func TestInputConsumer_RoutesInputEvents(t *testing.T) {
	sub, g, _ := startConsumer(t)
	h := sub.handler("alertaja/device/input")

	require.NoError(t, h("alertaja/device/input", []byte(`{"kind":"key","key":"7"}`)))
	require.NoError(t, h("alertaja/device/input", []byte(`{"kind":"text","text":"1234#AJ"}`)))

	require.Len(t, g.inputs, 2)
	assert.Equal(t, models.KeyEvent("7"), g.inputs[0])
	assert.Equal(t, models.TextEvent("1234#AJ"), g.inputs[1])
}

func TestInputConsumer_RejectsMalformedInput(t *testing.T) {
	sub, g, _ := startConsumer(t)
	h := sub.handler("alertaja/device/input")

	assert.Error(t, h("alertaja/device/input", []byte(`not json`)))
	assert.Error(t, h("alertaja/device/input", []byte(`{"key":"1"}`)))
	assert.Empty(t, g.inputs)
}

func TestInputConsumer_Commands(t *testing.T) {
	sub, g, _ := startConsumer(t)
	h := sub.handler("alertaja/device/command")
	topic := "alertaja/device/command"

	require.NoError(t, h(topic, []byte(`{"command":"trigger_sos"}`)))
	require.NoError(t, h(topic, []byte(`{"command":"cancel_sos"}`)))
	require.NoError(t, h(topic, []byte(`{"command":"lock"}`)))
	require.NoError(t, h(topic, []byte(`{"command":"set_disguise","disguise":"clock"}`)))
	require.NoError(t, h(topic, []byte(`{"command":"call_contact","id":"c1"}`)))
	require.NoError(t, h(topic, []byte(`{"command":"message_contact","id":"c2"}`)))
	require.NoError(t, h(topic, []byte(`{"command":"call_station","id":"3"}`)))
	require.NoError(t, h(topic, []byte(`{"command":"call_emergency","id":"policia"}`)))

	assert.Equal(t, 1, g.triggers)
	assert.Equal(t, 1, g.cancels)
	assert.Equal(t, 1, g.locks)
	assert.Equal(t, []models.DisguiseType{models.DisguiseClock}, g.disguises)
	assert.Equal(t, []string{"c1"}, g.calls)
	assert.Equal(t, []string{"c2"}, g.messages)
	assert.Equal(t, []string{"3"}, g.stations)
	assert.Equal(t, []string{"policia"}, g.emergency)
}

func TestInputConsumer_InvalidCommands(t *testing.T) {
	sub, g, _ := startConsumer(t)
	h := sub.handler("alertaja/device/command")
	topic := "alertaja/device/command"

	assert.Error(t, h(topic, []byte(`{"command":"self_destruct"}`)))
	assert.Error(t, h(topic, []byte(`{"command":"set_disguise","disguise":"weather"}`)))
	assert.Empty(t, g.disguises)
}

func TestInputConsumer_Stop(t *testing.T) {
	sub, _, c := startConsumer(t)
	c.Stop()
	assert.ElementsMatch(t, []string{"alertaja/device/input", "alertaja/device/command"}, sub.unsubscribed)
}
