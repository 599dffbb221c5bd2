//go:build !unix

package ffmpeg

import "os/exec"

// setProcessGroup keeps the default exec.CommandContext behaviour (kill the
// direct child) where process groups are not available.
func setProcessGroup(cmd *exec.Cmd) {}
