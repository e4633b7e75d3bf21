// Package tui 终端伪装前端
//
// 锁定时显示当前伪装（计算器、笔记、时钟），按键转成 models.InputEvent 交给核心；
// 解锁后显示 SOS 面板。终端没有按键抬起事件，时钟伪装用空格切换长按开始和结束。
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"alertaja/internal/events"
	"alertaja/internal/models"
	"alertaja/internal/service"
	"alertaja/internal/sos"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
)

// core 终端界面调用的核心操作
type core interface {
	HandleInput(ev models.InputEvent) bool
	TriggerSOS(ctx context.Context) bool
	CancelSOS() bool
	Lock()
	SetDisguise(ctx context.Context, d models.DisguiseType) error
	CallContact(ctx context.Context, id string) (bool, error)
	MessageContact(ctx context.Context, id string) (bool, error)
	CallStation(ctx context.Context, id string) (bool, error)
	CallEmergency(ctx context.Context, service string) (bool, error)
	Snapshot() service.Snapshot
}

// contactSource 面板显示的联系人
type contactSource interface {
	Contacts(ctx context.Context) []models.EmergencyContact
}

// stationSource 面板显示的站点
type stationSource interface {
	Featured(ctx context.Context, coords *models.Coordinates) []models.SafeStation
}

// Deps 终端界面依赖
type Deps struct {
	Core     core
	Contacts contactSource
	Stations stationSource
	Clock    clockwork.Clock
}

// tickMsg 每秒刷新（时钟伪装和倒计时）
type tickMsg time.Time

// calculatorKeys 终端按键到计算器按键
var calculatorKeys = map[string]string{
	"0": "0", "1": "1", "2": "2", "3": "3", "4": "4",
	"5": "5", "6": "6", "7": "7", "8": "8", "9": "9",
	".": ".", ",": ".",
	"+": "+", "-": "-", "*": "*", "x": "*", "/": "/",
	"%": "%", "!": "±", "=": "=", "enter": "=",
	"c": "C", "C": "C", "esc": "C",
}

// emergencyKeys 面板快捷键到紧急号码
var emergencyKeys = map[string]string{
	"p": "policia",
	"b": "bombeiros",
	"k": "crianca",
	"m": "mulher",
}

// Model 终端界面 bubbletea 模型
type Model struct {
	ctx  context.Context
	deps Deps

	snap     service.Snapshot
	contacts []models.EmergencyContact
	stations []models.SafeStation

	notes   textinput.Model
	holding bool

	status string
	flash  bool
	width  int
}

// NewModel 创建终端界面模型
func NewModel(ctx context.Context, deps Deps) Model {
	ti := textinput.New()
	ti.Placeholder = "Escreva aqui..."
	ti.CharLimit = 2000
	ti.Prompt = ""
	ti.Focus()

	m := Model{
		ctx:   ctx,
		deps:  deps,
		notes: ti,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// refresh 重新读取核心状态；锁定时清空伪装输入
func (m *Model) refresh() {
	prev := m.snap.Gate.Unlocked
	m.snap = m.deps.Core.Snapshot()

	switch {
	case !prev && m.snap.Gate.Unlocked:
		m.contacts = m.deps.Contacts.Contacts(m.ctx)
		m.stations = m.deps.Stations.Featured(m.ctx, nil)
		m.status = ""
	case prev && !m.snap.Gate.Unlocked:
		m.notes.SetValue("")
		m.holding = false
		m.status = ""
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		m.refresh()
		m.flash = false
		return m, m.tick()

	case RefreshMsg:
		m.refresh()
		return m, nil

	case EventMsg:
		m.refresh()
		if msg.Event.Type == events.TypeSOSDispatched {
			m.status = fmt.Sprintf("Alerta enviado para %d contacto(s)", msg.Event.ContactsNotified)
		}
		return m, nil

	case HapticMsg:
		m.flash = msg.Kind != sos.HapticSuccess
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.snap.Gate.Unlocked {
			return m.updateDashboard(msg)
		}
		return m.updateDisguise(msg)
	}

	return m, nil
}

// updateDisguise 锁定状态：按键交给当前伪装的识别器
func (m Model) updateDisguise(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.snap.Gate.ActiveDisguise {
	case models.DisguiseCalculator:
		if key, ok := calculatorKeys[msg.String()]; ok {
			m.deps.Core.HandleInput(models.KeyEvent(key))
		}

	case models.DisguiseNotes:
		before := m.notes.Value()
		var cmd tea.Cmd
		m.notes, cmd = m.notes.Update(msg)
		if after := m.notes.Value(); after != before {
			m.deps.Core.HandleInput(models.TextEvent(after))
		}
		m.refresh()
		return m, cmd

	case models.DisguiseClock:
		switch {
		case msg.Type == tea.KeySpace && !m.snap.View.PadVisible:
			if m.holding {
				m.deps.Core.HandleInput(models.InputEvent{Kind: models.InputPressEnd})
			} else {
				m.deps.Core.HandleInput(models.InputEvent{Kind: models.InputPressStart})
			}
			m.holding = !m.holding
		case msg.Type == tea.KeyEsc:
			m.deps.Core.HandleInput(models.InputEvent{Kind: models.InputCancel})
		case m.snap.View.PadVisible && len(msg.Runes) == 1 && msg.Runes[0] >= '0' && msg.Runes[0] <= '9':
			m.holding = false
			m.deps.Core.HandleInput(models.KeyEvent(string(msg.Runes)))
		}
	}

	m.refresh()
	return m, nil
}

// updateDashboard 解锁状态：SOS 面板快捷键
func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.snap.SOS.State == sos.StateCounting {
		if key == "x" || key == "esc" {
			m.deps.Core.CancelSOS()
			m.status = "Alerta cancelado"
		}
		m.refresh()
		return m, nil
	}

	switch {
	case key == "s" || key == "enter":
		if !m.deps.Core.TriggerSOS(m.ctx) {
			m.status = "Alerta já em curso"
		}
	case key == "l":
		m.deps.Core.Lock()
	case key == "d":
		next := m.snap.Gate.ActiveDisguise.Next()
		if err := m.deps.Core.SetDisguise(m.ctx, next); err != nil {
			m.status = "Disfarce alterado (não guardado)"
		}
	case emergencyKeys[key] != "":
		m.report(m.deps.Core.CallEmergency(m.ctx, emergencyKeys[key]))
	case len(key) == 1 && key[0] >= '1' && key[0] <= '9':
		if i := int(key[0] - '1'); i < len(m.contacts) {
			m.report(m.deps.Core.CallContact(m.ctx, m.contacts[i].ID))
		}
	case len(key) == 1 && key[0] >= 'A' && key[0] <= 'I':
		if i := int(key[0] - 'A'); i < len(m.contacts) {
			m.report(m.deps.Core.MessageContact(m.ctx, m.contacts[i].ID))
		}
	case key == "f1" || key == "f2" || key == "f3":
		if i := int(key[1] - '1'); i < len(m.stations) {
			m.report(m.deps.Core.CallStation(m.ctx, m.stations[i].ID))
		}
	}

	m.refresh()
	return m, nil
}

func (m *Model) report(ok bool, err error) {
	switch {
	case err != nil:
		m.status = "Erro: " + err.Error()
	case ok:
		m.status = "A abrir..."
	default:
		m.status = "Não foi possível abrir"
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var body string
	switch {
	case m.snap.Gate.Unlocked && m.snap.SOS.State != sos.StateIdle:
		body = m.viewCountdown()
	case m.snap.Gate.Unlocked:
		body = m.viewDashboard()
	case m.snap.Gate.ActiveDisguise == models.DisguiseNotes:
		body = m.viewNotes()
	case m.snap.Gate.ActiveDisguise == models.DisguiseClock:
		body = m.viewClock()
	default:
		body = m.viewCalculator()
	}
	return frameStyle.Render(body)
}

func (m Model) viewCalculator() string {
	display := m.snap.View.Display
	if display == "" {
		display = "0"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		displayStyle.Render(display),
		"",
		mutedStyle.Render("7 8 9 /   4 5 6 *   1 2 3 -   0 . = +"),
		mutedStyle.Render("c AC   ! ±   % %"),
	)
}

func (m Model) viewNotes() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Notas"),
		"",
		m.notes.View(),
	)
}

func (m Model) viewClock() string {
	now := m.deps.Clock.Now()
	lines := []string{
		clockStyle.Render(now.Format("15:04:05")),
		mutedStyle.Render(now.Format("Monday, 2 January")),
	}

	if m.snap.View.PadVisible {
		dots := strings.Repeat("●", m.snap.View.PinEntered) +
			strings.Repeat("○", max(m.snap.View.PinLength-m.snap.View.PinEntered, 0))
		lines = append(lines, "", dots)
		if m.snap.View.PinError {
			lines = append(lines, errorStyle.Render("PIN incorreto"))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m Model) viewCountdown() string {
	if m.snap.SOS.State == sos.StateDispatching {
		return countdownStyle.Render("A ENVIAR ALERTA...")
	}
	text := fmt.Sprintf("ALERTA EM\n\n%d\n\nsegundos\n\nA mensagem SOS será enviada para %d contacto(s)\n\n[x] CANCELAR",
		m.snap.SOS.Remaining, len(m.contacts))
	style := countdownStyle
	if m.flash {
		style = style.Background(colorPrimary)
	}
	return style.Render(text)
}

func (m Model) viewDashboard() string {
	var b strings.Builder

	b.WriteString(statusDot + " " + titleStyle.Render("Protegido") + "\n\n")
	b.WriteString(sosButtonStyle.Render("ALERTE JÁ! [s]") + "\n")

	b.WriteString(sectionStyle.Render("Contactos de Emergência") + "\n")
	if len(m.contacts) == 0 {
		b.WriteString(mutedStyle.Render("  (nenhum)") + "\n")
	}
	for i, c := range m.contacts {
		if i >= 9 {
			break
		}
		tag := ""
		if c.IsPolice {
			tag = " (polícia)"
		}
		fmt.Fprintf(&b, "  [%d] ligar  [%c] SMS  %s%s\n", i+1, 'A'+i, c.Name, tag)
	}

	b.WriteString(sectionStyle.Render("Postos Seguros Próximos") + "\n")
	for i, s := range m.stations {
		phone := ""
		if s.Phone != nil {
			phone = " " + *s.Phone
		}
		fmt.Fprintf(&b, "  [F%d] %s - %s%s\n", i+1, s.Name, mutedStyle.Render(s.Address), phone)
	}

	b.WriteString(sectionStyle.Render("Números de Emergência") + "\n")
	fmt.Fprintf(&b, "  [p] Polícia %s  [b] Bombeiros %s  [k] Criança %s  [m] Mulher %s\n",
		models.EmergencyNumbers["policia"], models.EmergencyNumbers["bombeiros"],
		models.EmergencyNumbers["crianca"], models.EmergencyNumbers["mulher"])

	b.WriteString("\n" + mutedStyle.Render("[l] bloquear  [d] trocar disfarce  ctrl+c sair"))
	if m.status != "" {
		b.WriteString("\n" + m.status)
	}
	return b.String()
}
