package dialog

import (
	"sync"

	"github.com/scienceol/chemdash/pkg/common/code"
	"github.com/scienceol/chemdash/pkg/repo/model"
)

// State is a copy of the share dialog for display.
type State struct {
	Open     bool            `json:"open"`
	Target   *model.Compound `json:"target,omitempty"`
	Selected *model.User     `json:"selected,omitempty"`
}

// Share is the modal used to pick the user a compound is shared with. While
// open it holds exactly one target; Close always forgets target and selection.
type Share struct {
	mu       sync.Mutex
	target   *model.Compound
	selected *model.User
}

func NewShare() *Share {
	return &Share{}
}

// Open replaces whatever the dialog held with target and no selection.
func (s *Share) Open(target model.Compound) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = &target
	s.selected = nil
}

func (s *Share) Select(user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == nil {
		return code.DialogClosedErr
	}
	s.selected = &user
	return nil
}

func (s *Share) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = nil
	s.selected = nil
}

func (s *Share) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target != nil
}

// Target returns a copy of the compound the dialog operates on, nil when closed.
func (s *Share) Target() *model.Compound {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == nil {
		return nil
	}
	t := *s.target
	return &t
}

func (s *Share) Selected() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return nil
	}
	u := *s.selected
	return &u
}

func (s *Share) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{Open: s.target != nil}
	if s.target != nil {
		t := *s.target
		st.Target = &t
	}
	if s.selected != nil {
		u := *s.selected
		st.Selected = &u
	}
	return st
}
