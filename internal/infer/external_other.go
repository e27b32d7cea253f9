//go:build !unix

package infer

import "os/exec"

// setProcessGroup is a no-op where process groups are unavailable; WaitDelay
// still bounds how long Wait can block after cancellation.
func setProcessGroup(cmd *exec.Cmd) {}
