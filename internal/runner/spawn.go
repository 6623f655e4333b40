package runner

import "os/exec"

// Spawner starts a prepared command. It is the single point where a process
// is created, so tests can count or refuse spawns.
type Spawner interface {
	Start(cmd *exec.Cmd) error
}

// ExecSpawner starts commands with (*exec.Cmd).Start.
type ExecSpawner struct{}

// Start implements Spawner.
func (ExecSpawner) Start(cmd *exec.Cmd) error {
	return cmd.Start()
}
