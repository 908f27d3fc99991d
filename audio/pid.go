package audio

import "sync/atomic"

// PIDRegister holds the process id of the running capture subprocess.
// The spawning goroutine writes it and the stopping goroutine reads it,
// with nothing else ordering the two.
type PIDRegister struct {
	v atomic.Int64
}

func (r *PIDRegister) Store(pid int) { r.v.Store(int64(pid)) }

// Load returns 0 when no capture process is registered.
func (r *PIDRegister) Load() int { return int(r.v.Load()) }

func (r *PIDRegister) Clear() { r.v.Store(0) }

// ClearIf clears the register only while it still holds pid, so an exiting
// session cannot wipe the id of one started after it.
func (r *PIDRegister) ClearIf(pid int) bool {
	return r.v.CompareAndSwap(int64(pid), 0)
}
