// Command channelcheck evaluates every channel of an M3U playlist and
// reports which ones are actually watchable.
//
// Exit status: 0 when at least one channel is healthy, 1 when none is,
// 2 on usage or setup errors.
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
