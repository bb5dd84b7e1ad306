package nav

import (
	"fmt"
	"strings"
	"sync"

	"github.com/crunchfoods/crunch-cli/internal/domain"
)

// Storage persists navigation state between invocations.
type Storage interface {
	Load() (domain.State, error)
	Save(domain.State) error
}

// Machine owns the active view. Every view change flows through it so
// the stored state and the shareable fragment stay in agreement.
type Machine struct {
	storage Storage

	mu   sync.Mutex
	view domain.View
}

// NewMachine restores the last active view from storage, falling back
// to home when nothing valid was stored.
func NewMachine(storage Storage) *Machine {
	m := &Machine{storage: storage, view: domain.ViewHome}
	if state, err := storage.Load(); err == nil && state.ActiveView != "" {
		if view, ok := domain.ParseView(string(state.ActiveView)); ok {
			m.view = view
		}
	}
	return m
}

// Mount applies a startup fragment on top of the restored view. An empty
// fragment keeps whatever storage said; anything else wins, with unknown
// fragments landing on home.
func (m *Machine) Mount(fragment string) domain.View {
	if fragment == "" {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.view
	}
	view := domain.ViewFromFragment(fragment)
	m.setAndPersist(view)
	return view
}

// Navigate switches to a named view and persists the change.
func (m *Machine) Navigate(name string) (domain.View, error) {
	view, ok := domain.ParseView(name)
	if !ok {
		return "", fmt.Errorf("unknown view %q (choose from %s)", name, viewList())
	}
	if err := m.setAndPersist(view); err != nil {
		return view, err
	}
	return view, nil
}

// HandleFragment reacts to a fragment changed outside Navigate, such as
// a pasted link. Unknown fragments resolve to home rather than failing.
func (m *Machine) HandleFragment(fragment string) (domain.View, error) {
	view := domain.ViewFromFragment(fragment)
	if err := m.setAndPersist(view); err != nil {
		return view, err
	}
	return view, nil
}

// Current returns the active view.
func (m *Machine) Current() domain.View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// Fragment returns the shareable fragment for the active view.
func (m *Machine) Fragment() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.Fragment()
}

func (m *Machine) setAndPersist(view domain.View) error {
	m.mu.Lock()
	m.view = view
	m.mu.Unlock()

	state, err := m.storage.Load()
	if err != nil {
		state = domain.State{}
	}
	state.ActiveView = view
	return m.storage.Save(state)
}

func viewList() string {
	names := make([]string, 0, len(domain.Views()))
	for _, v := range domain.Views() {
		names = append(names, string(v))
	}
	return strings.Join(names, ", ")
}
