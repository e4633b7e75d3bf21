package tui

import (
	"context"
	"testing"
	"time"

	"alertaja/internal/events"
	"alertaja/internal/gate"
	"alertaja/internal/models"
	"alertaja/internal/service"
	"alertaja/internal/sos"
	"alertaja/internal/trigger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCore struct {
	snap      service.Snapshot
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

func (c *fakeCore) HandleInput(ev models.InputEvent) bool {
	c.inputs = append(c.inputs, ev)
	return false
}

func (c *fakeCore) TriggerSOS(ctx context.Context) bool {
	c.triggers++
	c.snap.SOS = sos.Status{State: sos.StateCounting, Remaining: sos.CountdownSeconds}
	return true
}

func (c *fakeCore) CancelSOS() bool {
	c.cancels++
	c.snap.SOS = sos.Status{State: sos.StateIdle}
	return true
}

func (c *fakeCore) Lock() {
	c.locks++
	c.snap.Gate.Unlocked = false
}

func (c *fakeCore) SetDisguise(ctx context.Context, d models.DisguiseType) error {
	c.disguises = append(c.disguises, d)
	c.snap.Gate = gate.State{ActiveDisguise: d}
	return nil
}

func (c *fakeCore) CallContact(ctx context.Context, id string) (bool, error) {
	c.calls = append(c.calls, id)
	return true, nil
}

func (c *fakeCore) MessageContact(ctx context.Context, id string) (bool, error) {
	c.messages = append(c.messages, id)
	return true, nil
}

func (c *fakeCore) CallStation(ctx context.Context, id string) (bool, error) {
	c.stations = append(c.stations, id)
	return true, nil
}

func (c *fakeCore) CallEmergency(ctx context.Context, service string) (bool, error) {
	c.emergency = append(c.emergency, service)
	return true, nil
}

func (c *fakeCore) Snapshot() service.Snapshot {
	return c.snap
}

type staticContacts []models.EmergencyContact

func (s staticContacts) Contacts(ctx context.Context) []models.EmergencyContact { return s }

type staticStations []models.SafeStation

func (s staticStations) Featured(ctx context.Context, coords *models.Coordinates) []models.SafeStation {
	return s
}

func newTestModel(core *fakeCore) Model {
	return NewModel(context.Background(), Deps{
		Core: core,
		Contacts: staticContacts{
			{ID: "c1", Name: "Maria", Phone: "923000001"},
			{ID: "c2", Name: "Polícia", Phone: "113", IsPolice: true},
		},
		Stations: staticStations(models.DefaultSafeStations()[:3]),
		Clock:    clockwork.NewFakeClockAt(time.Date(2024, 3, 8, 21, 15, 30, 0, time.UTC)),
	})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func TestModel_CalculatorKeys(t *testing.T) {
	core := &fakeCore{snap: service.Snapshot{
		Gate: gate.State{ActiveDisguise: models.DisguiseCalculator},
		View: trigger.View{Disguise: models.DisguiseCalculator, Display: "12"},
	}}
	m := newTestModel(core)

	press(t, m, runes("1"), runes("x"), runes("!"), runes("q"), tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, []models.InputEvent{
		models.KeyEvent("1"),
		models.KeyEvent("*"),
		models.KeyEvent("±"),
		models.KeyEvent("="),
		models.KeyEvent("C"),
	}, core.inputs)
	assert.Contains(t, m.View(), "12")
}

func TestModel_NotesSendsWholeText(t *testing.T) {
	core := &fakeCore{snap: service.Snapshot{Gate: gate.State{ActiveDisguise: models.DisguiseNotes}}}
	m := newTestModel(core)

	m = press(t, m, runes("a"), runes("b"))

	require.Len(t, core.inputs, 2)
	assert.Equal(t, models.TextEvent("a"), core.inputs[0])
	assert.Equal(t, models.TextEvent("ab"), core.inputs[1])
	assert.Contains(t, m.View(), "Notas")
}

func TestModel_ClockSpaceTogglesPress(t *testing.T) {
	core := &fakeCore{snap: service.Snapshot{Gate: gate.State{ActiveDisguise: models.DisguiseClock}}}
	m := newTestModel(core)

	assert.Contains(t, m.View(), "21:15:30")

	space := tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	m = press(t, m, space, runes("1"), space)

	assert.Equal(t, []models.InputEvent{
		{Kind: models.InputPressStart},
		{Kind: models.InputPressEnd},
	}, core.inputs)

	// 密码盘显示后数字交给识别器
	core.inputs = nil
	core.snap.View = trigger.View{Disguise: models.DisguiseClock, PadVisible: true, PinLength: 4, PinEntered: 1, PinError: true}
	m = press(t, m, RefreshMsg{}, runes("7"), tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, []models.InputEvent{
		models.KeyEvent("7"),
		{Kind: models.InputCancel},
	}, core.inputs)
	view := m.View()
	assert.Contains(t, view, "●○○○")
	assert.Contains(t, view, "PIN incorreto")
}

func unlockedCore() *fakeCore {
	return &fakeCore{snap: service.Snapshot{
		Gate: gate.State{Unlocked: true, ActiveDisguise: models.DisguiseCalculator},
		SOS:  sos.Status{State: sos.StateIdle},
	}}
}

func TestModel_Dashboard(t *testing.T) {
	core := unlockedCore()
	m := newTestModel(core)

	view := m.View()
	assert.Contains(t, view, "Protegido")
	assert.Contains(t, view, "Maria")
	assert.Contains(t, view, "Hospital Josina Machel")
	assert.Contains(t, view, "113")

	m = press(t, m, runes("1"), runes("B"), runes("p"), tea.KeyMsg{Type: tea.KeyF2})

	assert.Equal(t, []string{"c1"}, core.calls)
	assert.Equal(t, []string{"c2"}, core.messages)
	assert.Equal(t, []string{"policia"}, core.emergency)
	assert.Equal(t, []string{"2"}, core.stations)
	assert.Empty(t, core.inputs)
	assert.Contains(t, m.View(), "A abrir...")
}

func TestModel_SOSCountdownAndCancel(t *testing.T) {
	core := unlockedCore()
	m := newTestModel(core)

	m = press(t, m, runes("s"))
	assert.Equal(t, 1, core.triggers)
	assert.Contains(t, m.View(), "ALERTA EM")

	// 倒计时中面板快捷键无效
	m = press(t, m, runes("1"), runes("x"))
	assert.Empty(t, core.calls)
	assert.Equal(t, 1, core.cancels)
	assert.Contains(t, m.View(), "Alerta cancelado")

	m = press(t, m, EventMsg{Event: events.Event{Type: events.TypeSOSDispatched, ContactsNotified: 2}})
	assert.Contains(t, m.View(), "Alerta enviado para 2 contacto(s)")
}

func TestModel_LockAndSwitchDisguise(t *testing.T) {
	core := unlockedCore()
	m := newTestModel(core)

	m = press(t, m, runes("d"))
	assert.Equal(t, []models.DisguiseType{models.DisguiseNotes}, core.disguises)
	assert.Contains(t, m.View(), "Notas")

	core.snap.Gate.Unlocked = true
	m = press(t, m, RefreshMsg{}, runes("l"))
	assert.Equal(t, 1, core.locks)
	assert.Contains(t, m.View(), "Notas")
}

func TestModel_CtrlCQuits(t *testing.T) {
	m := newTestModel(unlockedCore())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
