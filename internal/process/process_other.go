//go:build !unix

package process

import (
	"os"
	"os/exec"
)

func setProcessGroup(*exec.Cmd) {}

func signalProcess(cmd *exec.Cmd, sig os.Signal) error {
	return cmd.Process.Signal(sig)
}
