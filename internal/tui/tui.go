package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fadedpez/tucojack/internal/logging"
	"github.com/fadedpez/tucojack/internal/types"
	"github.com/fadedpez/tucojack/pkg/entities"
	"github.com/fadedpez/tucojack/pkg/games/blackjack"
	bjService "github.com/fadedpez/tucojack/pkg/services/blackjack"
	"github.com/fadedpez/tucojack/pkg/services/statistics"
)

const sidebarWidth = 28

// Model is the Bubble Tea model for one blackjack session. It renders the
// table state and turns key presses into session intents.
type Model struct {
	ctx     context.Context
	session *blackjack.Session
	logger  *logging.Logger

	keys    keyMap
	help    help.Model
	roundVP viewport.Model

	state   bjService.State
	errMsg  string
	summary *statistics.SessionSummary

	roundLog    []string
	lastRoundID string

	width    int
	height   int
	quitting bool
}

// New creates a model bound to session
func New(ctx context.Context, session *blackjack.Session, logger *logging.Logger) *Model {
	if logger == nil {
		logger = logging.Default
	}

	vp := viewport.New(sidebarWidth, 8)
	vp.SetContent("")

	m := &Model{
		ctx:     ctx,
		session: session,
		logger:  logger.WithPrefix("[TUI]"),
		keys:    newKeyMap(),
		help:    help.New(),
		roundVP: vp,
		state:   session.State(),
	}
	m.keys.setBetStep(session.BetStep())
	m.keys.enable(blackjack.AvailableActions(m.state))
	return m
}

// Run starts the full screen program and blocks until the player quits
func Run(ctx context.Context, session *blackjack.Session, logger *logging.Logger) error {
	program := tea.NewProgram(New(ctx, session, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

		for _, tk := range m.keys.table() {
			if key.Matches(msg, *tk.binding) {
				m.dispatch(blackjack.Intent{Action: tk.action})
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.roundVP, cmd = m.roundVP.Update(msg)
	return m, cmd
}

// dispatch sends one intent and folds the result into the view
func (m *Model) dispatch(intent blackjack.Intent) {
	state, err := m.session.Dispatch(m.ctx, intent)
	m.state = state
	m.errMsg = ""
	if err != nil {
		m.errMsg = types.UserMessage(err)
	}

	if state.HasResult() && state.RoundID != "" && state.RoundID != m.lastRoundID {
		m.lastRoundID = state.RoundID
		m.recordRound(state)
	}

	m.keys.enable(blackjack.AvailableActions(state))
}

func (m *Model) recordRound(state bjService.State) {
	summary, err := m.session.Summary(m.ctx)
	if err != nil {
		m.logger.LogError(err)
	} else {
		m.summary = summary
	}

	line := fmt.Sprintf("#%d %s", len(m.roundLog)+1, state.Outcome)
	if len(state.PlayerHand) > 0 {
		line += fmt.Sprintf(" %d-%d", state.PlayerValue, state.DealerValue)
	}
	m.roundLog = append(m.roundLog, line)
	m.roundVP.SetContent(strings.Join(m.roundLog, "\n"))
	m.roundVP.GotoBottom()
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	table := PaneStyle.Render(m.renderTable())
	sidebar := PaneStyle.Width(sidebarWidth).Render(m.renderSidebar())
	body := lipgloss.JoinHorizontal(lipgloss.Top, table, sidebar)

	return lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render("TUCOJACK"),
		body,
		m.help.View(m.keys),
	)
}

func (m *Model) renderTable() string {
	var sb strings.Builder
	s := m.state

	sb.WriteString(LabelStyle.Render("Dealer"))
	if len(s.DealerHand) > 0 {
		sb.WriteString(InfoStyle.Render(fmt.Sprintf("  (%d)", s.DealerValue)))
	}
	sb.WriteString("\n")
	sb.WriteString(renderHand(s.DealerHand, s.DealerHoleCardHidden))
	sb.WriteString("\n\n")

	sb.WriteString(LabelStyle.Render("Player"))
	if len(s.PlayerHand) > 0 {
		value := fmt.Sprintf("  (%d)", s.PlayerValue)
		if s.PlayerSoft {
			value = fmt.Sprintf("  (soft %d)", s.PlayerValue)
		}
		sb.WriteString(InfoStyle.Render(value))
	}
	sb.WriteString("\n")
	sb.WriteString(renderHand(s.PlayerHand, false))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Bankroll %s   Bet %s\n",
		MoneyStyle.Render(fmt.Sprintf("$%d", s.Bankroll)),
		MoneyStyle.Render(fmt.Sprintf("$%d", s.CurrentBet))))

	if s.HasResult() {
		style := WarningStyle
		switch {
		case s.Outcome.IsWin():
			style = SuccessStyle
		case s.Outcome == entities.OutcomeLose:
			style = ErrorStyle
		}
		sb.WriteString(style.Render(s.ResultMessage))
		sb.WriteString("\n")
	}
	if s.GameOver {
		sb.WriteString(ErrorStyle.Render(bjService.MessageGameOver))
		sb.WriteString("\n")
	}
	if m.errMsg != "" {
		sb.WriteString(ErrorStyle.Render(m.errMsg))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (m *Model) renderSidebar() string {
	var sb strings.Builder

	sb.WriteString(LabelStyle.Render("Session"))
	sb.WriteString("\n")
	if m.summary == nil {
		sb.WriteString(InfoStyle.Render("No rounds yet"))
		sb.WriteString("\n")
	} else {
		sum := m.summary
		sb.WriteString(fmt.Sprintf("Rounds %d  Win %.0f%%\n", sum.RoundsPlayed, sum.WinRate))
		sb.WriteString(fmt.Sprintf("W %d  L %d  P %d  BJ %d\n", sum.Wins, sum.Losses, sum.Pushes, sum.Blackjacks))
		sb.WriteString(fmt.Sprintf("Net $%d\n", sum.NetProfit()))
	}
	sb.WriteString(InfoStyle.Render(fmt.Sprintf("Shoe %d cards", m.state.ShoeRemaining)))
	sb.WriteString("\n\n")

	sb.WriteString(LabelStyle.Render("Rounds"))
	sb.WriteString("\n")
	sb.WriteString(m.roundVP.View())

	return sb.String()
}

func renderHand(cards []entities.Card, holeHidden bool) string {
	if len(cards) == 0 {
		return InfoStyle.Render("--")
	}

	parts := make([]string, len(cards))
	for i, c := range cards {
		if i == 0 && holeHidden {
			parts[i] = HiddenCardStyle.Render("[??]")
			continue
		}
		parts[i] = renderCard(c)
	}
	return strings.Join(parts, " ")
}

func renderCard(c entities.Card) string {
	label := "[" + c.Short() + "]"
	if c.Suit.IsRed() {
		return RedCardStyle.Render(label)
	}
	return BlackCardStyle.Render(label)
}
