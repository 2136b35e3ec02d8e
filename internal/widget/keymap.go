package widget

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit key.Binding
	Send key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "close"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
	}
}

func (k keyMap) helpLine() string {
	return k.Send.Help().Key + ": " + k.Send.Help().Desc + " | " + k.Quit.Help().Key + ": " + k.Quit.Help().Desc
}
