package control

import "sync"

// Mode is either AutoMode or ManualMode.
type Mode interface {
	Name() string
	isMode()
}

type AutoMode struct{}

func (AutoMode) Name() string { return "AUTO" }
func (AutoMode) isMode()      {}

// ManualMode pins irrigation to Irrigation until the process restarts or a
// newer command replaces it.
type ManualMode struct {
	Irrigation bool
	Reason     string
}

func (ManualMode) Name() string { return "MANUAL" }
func (ManualMode) isMode()      {}

// Snapshot is a consistent copy of State.
type Snapshot struct {
	IrrigationOn bool
	Mode         Mode
	Reason       string
}

// State is the node's only mutable record. It is shared by the publish loop
// and the command handler; every access goes through mu.
type State struct {
	mu           sync.Mutex
	irrigationOn bool
	mode         Mode
	reason       string
}

func NewState() *State {
	return &State{mode: AutoMode{}}
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{IrrigationOn: s.irrigationOn, Mode: s.mode, Reason: s.reason}
}

// ApplyOverride switches to MANUAL with the commanded value.
func (s *State) ApplyOverride(irrigation bool, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ManualMode{Irrigation: irrigation, Reason: reason}
	s.irrigationOn = irrigation
	s.reason = reason
}

// update runs fn with the lock held so a read-decide-write cycle cannot
// interleave with ApplyOverride.
func (s *State) update(fn func(irrigationOn *bool, mode Mode, reason *string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.irrigationOn, s.mode, &s.reason)
}
