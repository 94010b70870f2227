package chrome

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Address     key.Binding
	Open        key.Binding
	Back        key.Binding
	Forward     key.Binding
	Reload      key.Binding
	Home        key.Binding
	NewTab      key.Binding
	CloseTab    key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	MoveLeft    key.Binding
	MoveRight   key.Binding
	DevTools    key.Binding
	AddBookmark key.Binding
	Bookmarks   key.Binding
	History     key.Binding
	Downloads   key.Binding
	Cookies     key.Binding
	Settings    key.Binding
	Source      key.Binding
	SavePage    key.Binding
	CopyURL     key.Binding
	Theme       key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Address: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "edit address"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open address"),
		),
		Back: key.NewBinding(
			key.WithKeys("alt+left", "["),
			key.WithHelp("alt+←/[", "back"),
		),
		Forward: key.NewBinding(
			key.WithKeys("alt+right", "]"),
			key.WithHelp("alt+→/]", "forward"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r", "f5", "r"),
			key.WithHelp("ctrl+r/r", "reload"),
		),
		Home: key.NewBinding(
			key.WithKeys("alt+home", "~"),
			key.WithHelp("alt+home/~", "home"),
		),
		NewTab: key.NewBinding(
			key.WithKeys("ctrl+t", "t"),
			key.WithHelp("ctrl+t/t", "new tab"),
		),
		CloseTab: key.NewBinding(
			key.WithKeys("ctrl+w", "x"),
			key.WithHelp("ctrl+w/x", "close tab"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "L"),
			key.WithHelp("tab/L", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "H"),
			key.WithHelp("shift+tab/H", "previous tab"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("<"),
			key.WithHelp("<", "move tab left"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys(">"),
			key.WithHelp(">", "move tab right"),
		),
		DevTools: key.NewBinding(
			key.WithKeys("f12", "i"),
			key.WithHelp("f12/i", "developer tools"),
		),
		AddBookmark: key.NewBinding(
			key.WithKeys("ctrl+d", "m"),
			key.WithHelp("ctrl+d/m", "bookmark page"),
		),
		Bookmarks: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "bookmarks"),
		),
		History: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "history"),
		),
		Downloads: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "downloads"),
		),
		Cookies: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cookies"),
		),
		Settings: key.NewBinding(
			key.WithKeys(","),
			key.WithHelp(",", "settings"),
		),
		Source: key.NewBinding(
			key.WithKeys("ctrl+u", "u"),
			key.WithHelp("ctrl+u/u", "view source"),
		),
		SavePage: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save page"),
		),
		CopyURL: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy address"),
		),
		Theme: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "toggle theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c", "q"),
			key.WithHelp("ctrl+q/q", "quit"),
		),
	}
}

// groups returns the bindings in the order the help overlay lists them.
func (k keyMap) groups() [][]key.Binding {
	return [][]key.Binding{
		{k.Address, k.Open, k.Back, k.Forward, k.Reload, k.Home},
		{k.NewTab, k.CloseTab, k.NextTab, k.PrevTab, k.MoveLeft, k.MoveRight},
		{k.AddBookmark, k.Bookmarks, k.History, k.Downloads, k.Cookies},
		{k.Source, k.SavePage, k.CopyURL, k.DevTools},
		{k.Settings, k.Theme, k.Help, k.Quit},
	}
}
