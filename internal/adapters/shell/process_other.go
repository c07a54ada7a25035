//go:build !unix

package shell

import (
	"os"
	"os/exec"
)

func configureProcess(*exec.Cmd) {}

func signalName(*os.ProcessState) string {
	return ""
}
