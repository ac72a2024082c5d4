package main

import (
	"fmt"
	"os"
	"strings"

	cli "github.com/spf13/pflag"

	"ray/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Daemon control socket")
	cli.Parse()

	args := cli.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: ray-ctl [--socket path] <trigger|listen-on|listen-off|say> [text]")
		os.Exit(2)
	}

	req := ipc.Request{Cmd: args[0]}
	if len(args) > 1 {
		req.Arg = strings.Join(args[1:], " ")
	}

	resp, err := ipc.Send(*socket, req)
	if err != nil {
		fmt.Println("ray daemon not running:", err)
		os.Exit(1)
	}
	if !resp.OK {
		fmt.Println("refused:", resp.Message)
		os.Exit(1)
	}
	if resp.Message != "" {
		fmt.Println(resp.Message)
	}
}
