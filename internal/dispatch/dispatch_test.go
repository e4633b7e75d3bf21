package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"alertaja/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

// recordingLauncher 记录所有打开的链接，按前缀模拟失败
type recordingLauncher struct {
	mu         sync.Mutex
	opened     []string
	cannotOpen []string
	failOpen   []string
}

func hasPrefixIn(url string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(url, p) {
			return true
		}
	}
	return false
}

func (l *recordingLauncher) CanOpen(ctx context.Context, url string) (bool, error) {
	return !hasPrefixIn(url, l.cannotOpen), nil
}

func (l *recordingLauncher) Open(ctx context.Context, url string) error {
	if hasPrefixIn(url, l.failOpen) {
		return errors.New("activity not found")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opened = append(l.opened, url)
	return nil
}

func (l *recordingLauncher) count(prefix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, u := range l.opened {
		if strings.HasPrefix(u, prefix) {
			n++
		}
	}
	return n
}

func TestSMSURL(t *testing.T) {
	assert.Equal(t, "sms:923000000?body=Ol%C3%A1%20mundo!", SMSURL(PlatformAndroid, "923000000", "Olá mundo!"))
	assert.Equal(t, "sms:923000000&body=Ol%C3%A1%20mundo!", SMSURL(PlatformIOS, "923000000", "Olá mundo!"))
}

func TestChannelURLs(t *testing.T) {
	assert.Equal(t, "tel:113", CallURL("113"))
	assert.Equal(t, "https://wa.me/244923000000?text=a%20b", WhatsAppURL("+244 923-000-000", "a b"))
	assert.Equal(t, "https://t.me/maria_ao?text=a%26b", TelegramURL("maria_ao", "a&b"))
}

func TestEncodeURIComponent(t *testing.T) {
	tests := map[string]string{
		"ALERTA SOS!":      "ALERTA%20SOS!",
		"q=-8.8,13.2":      "q%3D-8.8%2C13.2",
		"https://x.y/?q=1": "https%3A%2F%2Fx.y%2F%3Fq%3D1",
		"localização":      "localiza%C3%A7%C3%A3o",
		"-_.!~*'()":        "-_.!~*'()",
		"a+b":              "a%2Bb",
	}
	for in, want := range tests {
		assert.Equal(t, want, EncodeURIComponent(in), in)
	}
}

func TestBuildMessage(t *testing.T) {
	assert.Equal(t, "ALERTA SOS! Preciso de ajuda urgente!", BuildMessage(nil))
	assert.Equal(t,
		"ALERTA SOS! Preciso de ajuda urgente! Minha localização: https://maps.google.com/?q=-8.8383,13.2344",
		BuildMessage(&models.Coordinates{Latitude: -8.8383, Longitude: 13.2344}),
	)
}

func TestFanOut_AllChannels(t *testing.T) {
	l := &recordingLauncher{}
	d := NewDispatcher(l, PlatformAndroid, zap.NewNop())

	contacts := []models.EmergencyContact{
		{ID: "c1", Phone: "923000001", WhatsApp: strPtr("+244923000001")},
		{ID: "c2", Phone: "923000002", Telegram: strPtr("ana")},
		{ID: "c3", Phone: "113", IsPolice: true},
	}

	notified := d.FanOut(context.Background(), contacts, BuildMessage(nil))

	assert.Equal(t, []string{"c1", "c2", "c3"}, notified)
	assert.Equal(t, 3, l.count("sms:"))
	assert.Equal(t, 1, l.count("https://wa.me/"))
	assert.Equal(t, 1, l.count("https://t.me/"))
}

func TestFanOut_NotifiedOnlyWhenSMSIssued(t *testing.T) {
	l := &recordingLauncher{failOpen: []string{"sms:923000002"}}
	d := NewDispatcher(l, PlatformAndroid, zap.NewNop())

	contacts := []models.EmergencyContact{
		{ID: "c1", Phone: "923000001"},
		{ID: "c2", Phone: "923000002", WhatsApp: strPtr("923000002")},
		{ID: "c3", Phone: "923000003"},
	}

	notified := d.FanOut(context.Background(), contacts, "x")

	assert.Equal(t, []string{"c1", "c3"}, notified)
	// WhatsApp 不受短信失败影响
	assert.Equal(t, 1, l.count("https://wa.me/"))
}

func TestFanOut_CannotOpenSMS(t *testing.T) {
	l := &recordingLauncher{cannotOpen: []string{"sms:"}}
	d := NewDispatcher(l, PlatformIOS, zap.NewNop())

	contacts := []models.EmergencyContact{
		{ID: "c1", Phone: "923000001", Telegram: strPtr("ana")},
	}

	assert.Empty(t, d.FanOut(context.Background(), contacts, "x"))
	assert.Equal(t, 1, l.count("https://t.me/"))
}

func TestFanOut_NoContacts(t *testing.T) {
	d := NewDispatcher(&recordingLauncher{}, PlatformAndroid, zap.NewNop())
	notified := d.FanOut(context.Background(), nil, "x")
	assert.NotNil(t, notified)
	assert.Empty(t, notified)
}

func TestDirectActions(t *testing.T) {
	l := &recordingLauncher{}
	d := NewDispatcher(l, PlatformAndroid, zap.NewNop())

	assert.True(t, d.Call(context.Background(), "113"))
	assert.True(t, d.Message(context.Background(), "923000001", DirectHelpMessage))

	assert.Equal(t, 1, l.count("tel:113"))
	assert.Equal(t, 1, l.count("sms:923000001?body=Preciso%20de%20ajuda!"))
}

type fakePublisher struct {
	connected bool
	topic     string
	payload   []byte
	err       error
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload []byte) error {
	p.topic = topic
	p.payload = payload
	return p.err
}

func (p *fakePublisher) IsConnected() bool { return p.connected }

func TestMQTTLauncher(t *testing.T) {
	pub := &fakePublisher{connected: true}
	l := NewMQTTLauncher(pub, "alertaja/device", 1, zap.NewNop())
	ctx := context.Background()

	ok, err := l.CanOpen(ctx, "tel:113")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.Open(ctx, "tel:113"))
	assert.Equal(t, "alertaja/device/intent", pub.topic)

	var msg IntentMessage
	require.NoError(t, json.Unmarshal(pub.payload, &msg))
	assert.Equal(t, "tel:113", msg.URL)
	assert.NotEmpty(t, msg.ID)

	pub.connected = false
	ok, _ = l.CanOpen(ctx, "tel:113")
	assert.False(t, ok)
}

func TestWebhookLauncher(t *testing.T) {
	var opened []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/intents/can-open":
			_, _ = w.Write([]byte(`{"canOpen":` + boolJSON(!strings.HasPrefix(body["url"], "https://t.me/")) + `}`))
		case "/intents/open":
			opened = append(opened, body["url"])
			w.WriteHeader(http.StatusAccepted)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	d := NewDispatcher(NewWebhookLauncher(srv.URL, time.Second, zap.NewNop()), PlatformAndroid, zap.NewNop())
	notified := d.FanOut(context.Background(), []models.EmergencyContact{
		{ID: "c1", Phone: "923000001", Telegram: strPtr("ana")},
	}, "x")

	assert.Equal(t, []string{"c1"}, notified)
	assert.Equal(t, []string{"sms:923000001?body=x"}, opened)
}

func TestWebhookLauncher_Unreachable(t *testing.T) {
	d := NewDispatcher(NewWebhookLauncher("http://127.0.0.1:1", 200*time.Millisecond, zap.NewNop()), PlatformAndroid, zap.NewNop())

	assert.False(t, d.Call(context.Background(), "113"))
}

func boolJSON(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
