package common

import (
	"errors"
	"strings"
)

// ErrModulePaused is returned when an engine operation runs while its module
// is administratively paused.
var ErrModulePaused = errors.New("module paused")

// PauseView reports whether a named module is administratively paused.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects the operation when the module is paused. A nil view or an
// unnamed module always passes.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// StaticPauses is a fixed pause set loaded at startup. The node consults it
// on every guarded engine operation.
type StaticPauses struct {
	modules map[string]struct{}
}

// NewStaticPauses builds a pause set from module names. Names are trimmed
// and lowercased; empty entries are ignored.
func NewStaticPauses(modules []string) *StaticPauses {
	set := make(map[string]struct{}, len(modules))
	for _, name := range modules {
		trimmed := strings.ToLower(strings.TrimSpace(name))
		if trimmed == "" {
			continue
		}
		set[trimmed] = struct{}{}
	}
	return &StaticPauses{modules: set}
}

// IsPaused implements PauseView.
func (s *StaticPauses) IsPaused(module string) bool {
	if s == nil {
		return false
	}
	_, ok := s.modules[strings.ToLower(module)]
	return ok
}
