//go:build !unix

package orchestrator

import "os/exec"

func killProcessGroup(cmd *exec.Cmd) {}
