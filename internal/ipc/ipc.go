// Package ipc carries control commands from the ctl binary to the
// running daemon over a unix socket.
package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
)

// DefaultSocketPath is where the daemon listens unless configured
// otherwise.
const DefaultSocketPath = "/tmp/ray.sock"

// Request is one control command.
//
// Cmds: "trigger" (run a voice turn), "listen-on"/"listen-off" (manual
// microphone guard), "say" (speak Arg verbatim).
type Request struct {
	Cmd string `json:"cmd"`
	Arg string `json:"arg,omitempty"`
}

type Response struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// Server accepts control connections until Close.
type Server struct {
	ln net.Listener
}

// Serve binds path and dispatches each connection's request to handler
// in its own goroutine.
func Serve(path string, handler func(Request) Response) (*Server, error) {
	os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go handleConn(conn, handler)
		}
	}()

	return &Server{ln: ln}, nil
}

func (s *Server) Close() error {
	return s.ln.Close()
}

func handleConn(conn net.Conn, handler func(Request) Response) {
	defer conn.Close()

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		return
	}
	resp := handler(req)
	_ = json.NewEncoder(conn).Encode(resp)
}

// Send delivers one request to the daemon at path and waits for its
// response.
func Send(path string, req Request) (Response, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Response{}, err
	}
	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}
