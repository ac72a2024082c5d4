package ipc

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "ctl.sock")

	srv, err := Serve(sock, func(req Request) Response {
		switch req.Cmd {
		case "say":
			return Response{OK: true, Message: "said: " + req.Arg}
		default:
			return Response{OK: false, Message: "unknown command: " + req.Cmd}
		}
	})
	require.NoError(t, err)
	defer srv.Close()

	resp, err := Send(sock, Request{Cmd: "say", Arg: "hello"})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "said: hello", resp.Message)

	resp, err = Send(sock, Request{Cmd: "bogus"})
	require.NoError(t, err)
	assert.False(t, resp.OK)
}

func TestSendWithoutDaemon(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "nobody-home.sock")
	_, err := Send(sock, Request{Cmd: "trigger"})
	assert.Error(t, err)
}

func TestServeReplacesStaleSocket(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "ctl.sock")

	first, err := Serve(sock, func(Request) Response { return Response{OK: true} })
	require.NoError(t, err)
	first.Close()

	second, err := Serve(sock, func(Request) Response { return Response{OK: true, Message: "v2"} })
	require.NoError(t, err)
	defer second.Close()

	resp, err := Send(sock, Request{Cmd: "trigger"})
	require.NoError(t, err)
	assert.Equal(t, "v2", resp.Message)
}
