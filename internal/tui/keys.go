package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/fadedpez/tucojack/pkg/games/blackjack"
)

type keyMap struct {
	Increase key.Binding
	Decrease key.Binding
	Deal     key.Binding
	Hit      key.Binding
	Stand    key.Binding
	NewRound key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Increase: key.NewBinding(key.WithKeys("+", "=", "up"), key.WithHelp("+", "raise bet")),
		Decrease: key.NewBinding(key.WithKeys("-", "_", "down"), key.WithHelp("-", "lower bet")),
		Deal:     key.NewBinding(key.WithKeys("d", "enter"), key.WithHelp("d", "deal")),
		Hit:      key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hit")),
		Stand:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stand")),
		NewRound: key.NewBinding(key.WithKeys("n", "enter"), key.WithHelp("n", "new round")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// setBetStep shows the session's bet increment in the help line
func (k *keyMap) setBetStep(step int64) {
	k.Increase.SetHelp("+", fmt.Sprintf("bet +$%d", step))
	k.Decrease.SetHelp("-", fmt.Sprintf("bet -$%d", step))
}

// tableKey pairs a binding with the intent it sends
type tableKey struct {
	binding *key.Binding
	action  blackjack.Action
}

func (k *keyMap) table() []tableKey {
	return []tableKey{
		{&k.Increase, blackjack.ActionIncreaseBet},
		{&k.Decrease, blackjack.ActionDecreaseBet},
		{&k.Deal, blackjack.ActionDeal},
		{&k.Hit, blackjack.ActionHit},
		{&k.Stand, blackjack.ActionStand},
		{&k.NewRound, blackjack.ActionNewRound},
	}
}

// enable switches on exactly the bindings whose intents are available
func (k *keyMap) enable(available []blackjack.Action) {
	on := make(map[blackjack.Action]bool, len(available))
	for _, a := range available {
		on[a] = true
	}
	for _, tk := range k.table() {
		tk.binding.SetEnabled(on[tk.action])
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Increase, k.Decrease, k.Deal, k.Hit, k.Stand, k.NewRound, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Increase, k.Decrease, k.Deal},
		{k.Hit, k.Stand, k.NewRound},
		{k.Help, k.Quit},
	}
}
