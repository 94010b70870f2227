package config

import "fmt"

// Open creates a file-backed Manager at path with the default sections
// registered and loaded. There is no package-level instance; callers carry the
// returned Manager in their application context.
func Open(path string) (*Manager, error) {
	store, err := NewFileStore(path)
	if err != nil {
		return nil, err
	}

	manager := NewManager(store)

	if err := manager.RegisterSection(NewBrowserSection()); err != nil {
		return nil, err
	}

	if err := manager.RegisterSection(NewUISection()); err != nil {
		return nil, err
	}

	if err := manager.LoadAll(); err != nil {
		return nil, err
	}

	return manager, nil
}

// Browser returns the browser section of m.
func Browser(m *Manager) (*BrowserSection, error) {
	section, ok := m.GetSection(SectionIDBrowser)
	if !ok {
		return nil, fmt.Errorf("section %q not registered", SectionIDBrowser)
	}

	browser, ok := section.(*BrowserSection)
	if !ok {
		return nil, fmt.Errorf("section %q has unexpected type %T", SectionIDBrowser, section)
	}
	return browser, nil
}

// UI returns the UI section of m.
func UI(m *Manager) (*UISection, error) {
	section, ok := m.GetSection(SectionIDUI)
	if !ok {
		return nil, fmt.Errorf("section %q not registered", SectionIDUI)
	}

	ui, ok := section.(*UISection)
	if !ok {
		return nil, fmt.Errorf("section %q has unexpected type %T", SectionIDUI, section)
	}
	return ui, nil
}
