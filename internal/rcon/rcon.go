// SPDX-License-Identifier: MPL-2.0

// Package rcon implements a minimal Source remote console client:
// little-endian length-prefixed packets over TCP, password auth, and
// one command per round trip. It covers what the shell command needs,
// nothing more.
package rcon

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
)

const (
	packetTypeResponse = 0
	packetTypeCommand  = 2
	packetTypeLogin    = 3

	// authFailedID is the request id echoed back on a failed login.
	authFailedID = -1

	// maxPacketSize bounds inbound packets; the protocol caps responses
	// well below this.
	maxPacketSize = 4110
)

var (
	// ErrAuthFailed is returned when the server rejects the password.
	ErrAuthFailed = errors.New("rcon authentication failed")
	// ErrBadPacket is returned for malformed or oversized packets.
	ErrBadPacket = errors.New("malformed rcon packet")
)

type (
	// Client is a connected remote console session. Not safe for
	// concurrent use; the protocol is strictly request/response.
	Client struct {
		conn   net.Conn
		nextID int32
	}

	packet struct {
		id   int32
		kind int32
		body string
	}
)

// Dial connects to a remote console endpoint.
func Dial(ctx context.Context, host string, port int) (*Client, error) {
	var d net.Dialer
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	return &Client{conn: conn, nextID: 1}, nil
}

// Close terminates the session.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Login authenticates the session. A rejected password yields
// ErrAuthFailed.
func (c *Client) Login(password string) error {
	id, err := c.send(packetTypeLogin, password)
	if err != nil {
		return err
	}

	// Some servers send an empty response value before the auth
	// response; skip past it.
	for {
		resp, err := c.recv()
		if err != nil {
			return err
		}
		if resp.kind == packetTypeResponse && resp.id != authFailedID {
			continue
		}
		if resp.id == authFailedID {
			return ErrAuthFailed
		}
		if resp.id != id {
			return fmt.Errorf("%w: unexpected auth response id %d", ErrBadPacket, resp.id)
		}
		return nil
	}
}

// Command executes one console command and returns the response body.
func (c *Client) Command(cmd string) (string, error) {
	id, err := c.send(packetTypeCommand, cmd)
	if err != nil {
		return "", err
	}

	resp, err := c.recv()
	if err != nil {
		return "", err
	}
	if resp.id != id {
		return "", fmt.Errorf("%w: unexpected response id %d", ErrBadPacket, resp.id)
	}
	return resp.body, nil
}

// send writes one packet and returns the id it was assigned.
func (c *Client) send(kind int32, body string) (int32, error) {
	id := c.nextID
	c.nextID++

	// id + type + body + two trailing NULs
	size := int32(4 + 4 + len(body) + 2)
	buf := make([]byte, 0, 4+size)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(size))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(id))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(kind))
	buf = append(buf, body...)
	buf = append(buf, 0, 0)

	if _, err := c.conn.Write(buf); err != nil {
		return 0, fmt.Errorf("writing packet: %w", err)
	}
	return id, nil
}

// recv reads one packet.
func (c *Client) recv() (packet, error) {
	var sizeBuf [4]byte
	if _, err := io.ReadFull(c.conn, sizeBuf[:]); err != nil {
		return packet{}, fmt.Errorf("reading packet size: %w", err)
	}

	size := int32(binary.LittleEndian.Uint32(sizeBuf[:]))
	if size < 10 || size > maxPacketSize {
		return packet{}, fmt.Errorf("%w: size %d", ErrBadPacket, size)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(c.conn, data); err != nil {
		return packet{}, fmt.Errorf("reading packet: %w", err)
	}

	return packet{
		id:   int32(binary.LittleEndian.Uint32(data[0:4])),
		kind: int32(binary.LittleEndian.Uint32(data[4:8])),
		body: string(data[8 : size-2]),
	}, nil
}
