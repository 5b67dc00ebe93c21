package actor

import "strconv"

// State is a point in the actor lifecycle. States only move forward:
// Created, Initialized, Running, Stopping, Stopped.
type State int32

const (
	StateCreated State = iota
	StateInitialized
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}
