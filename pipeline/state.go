package pipeline

// State identifies a position in the installation state machine. All
// transitions are forward-only except the troubleshooting re-entries
// into StateSettingEnv and StateInstallingDeps.
type State int

const (
	StateDetecting State = iota
	StateInstallingDeps
	StateSettingEnv
	StateAcquiring
	StateConfiguring
	StateCompiling
	StateAcquiringCompanion
	StateConfiguringCompanion
	StateCompilingCompanion
	StateVerifying
	StateDone
)

var stateNames = map[State]string{
	StateDetecting:            "detecting system",
	StateInstallingDeps:       "installing dependencies",
	StateSettingEnv:           "setting up environment",
	StateAcquiring:            "acquiring sources",
	StateConfiguring:          "configuring",
	StateCompiling:            "compiling",
	StateAcquiringCompanion:   "acquiring preprocessing sources",
	StateConfiguringCompanion: "configuring preprocessing system",
	StateCompilingCompanion:   "compiling preprocessing system",
	StateVerifying:            "verifying",
	StateDone:                 "done",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// companion reports whether the state belongs to the optional
// preprocessing branch, whose failure never regresses the main outcome.
func (s State) companion() bool {
	switch s {
	case StateAcquiringCompanion, StateConfiguringCompanion, StateCompilingCompanion:
		return true
	}
	return false
}
