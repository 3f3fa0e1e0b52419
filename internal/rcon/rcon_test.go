// SPDX-License-Identifier: MPL-2.0

package rcon

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"strconv"
	"testing"
)

// fakeServer speaks just enough of the protocol to exercise the client:
// it checks the login password and echoes commands back prefixed with
// "ran:".
func fakeServer(t *testing.T, password string, preamble bool) (host string, port int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			id, kind, body, err := readPacket(conn)
			if err != nil {
				return
			}

			switch kind {
			case packetTypeLogin:
				if preamble {
					writePacket(conn, id, packetTypeResponse, "")
				}
				if body == password {
					writePacket(conn, id, packetTypeCommand, "")
				} else {
					writePacket(conn, authFailedID, packetTypeCommand, "")
				}
			case packetTypeCommand:
				writePacket(conn, id, packetTypeResponse, "ran:"+body)
			}
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func readPacket(conn net.Conn) (id, kind int32, body string, err error) {
	var sizeBuf [4]byte
	if _, err = io.ReadFull(conn, sizeBuf[:]); err != nil {
		return 0, 0, "", err
	}
	size := int32(binary.LittleEndian.Uint32(sizeBuf[:]))
	data := make([]byte, size)
	if _, err = io.ReadFull(conn, data); err != nil {
		return 0, 0, "", err
	}
	id = int32(binary.LittleEndian.Uint32(data[0:4]))
	kind = int32(binary.LittleEndian.Uint32(data[4:8]))
	return id, kind, string(data[8 : size-2]), nil
}

func writePacket(conn net.Conn, id, kind int32, body string) {
	size := int32(4 + 4 + len(body) + 2)
	buf := make([]byte, 0, 4+size)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(size))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(id))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(kind))
	buf = append(buf, body...)
	buf = append(buf, 0, 0)
	_, _ = conn.Write(buf)
}

func dialFake(t *testing.T, host string, port int) *Client {
	t.Helper()
	c, err := Dial(context.Background(), host, port)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLoginAndCommand(t *testing.T) {
	host, port := fakeServer(t, "hunter2", false)
	c := dialFake(t, host, port)

	if err := c.Login("hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}

	out, err := c.Command("list")
	if err != nil {
		t.Fatalf("command: %v", err)
	}
	if out != "ran:list" {
		t.Errorf("response = %q", out)
	}
}

func TestLoginSkipsPreamble(t *testing.T) {
	host, port := fakeServer(t, "hunter2", true)
	c := dialFake(t, host, port)

	if err := c.Login("hunter2"); err != nil {
		t.Fatalf("login with preamble: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	host, port := fakeServer(t, "hunter2", false)
	c := dialFake(t, host, port)

	if err := c.Login("wrong"); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestDialRefused(t *testing.T) {
	// Grab a free port and close it again so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	ln.Close()

	if _, err := Dial(context.Background(), "127.0.0.1", port); err == nil {
		t.Fatal("expected connection error")
	}
}
