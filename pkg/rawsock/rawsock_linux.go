// Copyright 2026 CNI authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rawsock sends prebuilt Ethernet frames on an AF_PACKET socket.
package rawsock

import (
	"encoding/binary"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/containernetworking/arpsentinel/pkg/arpframe"
	"github.com/containernetworking/arpsentinel/pkg/errors"
)

// Socket is a raw link-layer socket. The caller owns it and closes it.
type Socket struct {
	f  *os.File
	fd int
}

// Open returns a raw ARP socket bound to the interface with index ifindex.
func Open(ifindex int) (*Socket, error) {
	proto := htons(unix.ETH_P_ARP)
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW|unix.SOCK_CLOEXEC, int(proto))
	if err != nil {
		return nil, errors.Annotate(err, "failed to open raw socket")
	}
	if err := unix.Bind(fd, &unix.SockaddrLinklayer{Protocol: proto, Ifindex: ifindex}); err != nil {
		unix.Close(fd)
		return nil, errors.Annotatef(err, "failed to bind raw socket to interface %d", ifindex)
	}
	return &Socket{f: os.NewFile(uintptr(fd), fmt.Sprintf("arp@%d", ifindex)), fd: fd}, nil
}

// FromFD wraps an inherited socket descriptor.
func FromFD(fd int, name string) *Socket {
	return &Socket{f: os.NewFile(uintptr(fd), name), fd: fd}
}

// File returns the socket as a file, e.g. to hand it to a child process.
func (s *Socket) File() *os.File {
	return s.f
}

func (s *Socket) Close() error {
	return s.f.Close()
}

// Send writes frame once to dst and returns the number of bytes sent.
func (s *Socket) Send(frame []byte, dst arpframe.Destination) (int, error) {
	sa := Sockaddr(dst)
	for {
		n, err := unix.SendmsgN(s.fd, frame, nil, sa, 0)
		if err == unix.EINTR {
			continue
		}
		if n < 0 {
			n = 0
		}
		return n, err
	}
}

// Sockaddr converts dst into the link-layer address passed to sendmsg.
func Sockaddr(dst arpframe.Destination) *unix.SockaddrLinklayer {
	sa := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ARP),
		Ifindex:  dst.Ifindex,
		Halen:    uint8(len(dst.HardwareAddr)),
	}
	copy(sa.Addr[:], dst.HardwareAddr)
	return sa
}

func htons(v uint16) uint16 {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return binary.NativeEndian.Uint16(b[:])
}
