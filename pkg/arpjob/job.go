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

// Package arpjob defines the job record passed from a control process to an
// interface worker, and its fixed-size wire encoding.
package arpjob

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/containernetworking/arpsentinel/pkg/errors"
)

// Kind selects how a worker answers an ARP event.
type Kind uint8

const (
	// AnnounceOwnership broadcasts that ClaimedMAC owns the address.
	AnnounceOwnership Kind = 1
	// ReplyToRequester answers the requester directly, contradicting the
	// address it asserted.
	ReplyToRequester Kind = 2
)

func (k Kind) String() string {
	switch k {
	case AnnounceOwnership:
		return "announce"
	case ReplyToRequester:
		return "reply"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Marker is the token used in the per-job log line.
func (k Kind) Marker() string {
	switch k {
	case AnnounceOwnership:
		return "->!"
	case ReplyToRequester:
		return "!->"
	default:
		return "ERR"
	}
}

// Size is the encoded length of a Request on the job channel.
const Size = 1 + 6 + 4 + 6 + 4 + 6 + 6

// ErrShortRecord is returned when decoding a buffer that is not exactly Size bytes.
var ErrShortRecord = errors.New("job record has invalid length")

// Request describes one ARP event. The Sender/Target fields are copied
// verbatim from the originating ARP request.
type Request struct {
	Kind            Kind
	RequesterMAC    [6]byte
	SenderProtoAddr [4]byte
	SenderHwAddr    [6]byte
	TargetProtoAddr [4]byte
	TargetHwAddr    [6]byte
	ClaimedMAC      [6]byte
}

// NewAnnounce returns a request asserting that mac owns ip on the segment.
func NewAnnounce(ip netip.Addr, mac net.HardwareAddr) (Request, error) {
	if !ip.Is4() {
		return Request{}, errors.Errorf("%s is not an IPv4 address", ip)
	}
	if len(mac) != 6 {
		return Request{}, errors.Errorf("invalid hardware address %q", mac)
	}
	r := Request{
		Kind:            AnnounceOwnership,
		SenderProtoAddr: ip.As4(),
		TargetProtoAddr: ip.As4(),
	}
	copy(r.RequesterMAC[:], mac)
	copy(r.SenderHwAddr[:], mac)
	copy(r.ClaimedMAC[:], mac)
	return r, nil
}

// MarshalBinary encodes r in field order: kind, requester MAC, sender
// protocol address, sender hardware address, target protocol address,
// target hardware address, claimed MAC.
func (r Request) MarshalBinary() ([]byte, error) {
	b := make([]byte, Size)
	r.put(b)
	return b, nil
}

func (r Request) put(b []byte) {
	b[0] = byte(r.Kind)
	n := 1
	n += copy(b[n:], r.RequesterMAC[:])
	n += copy(b[n:], r.SenderProtoAddr[:])
	n += copy(b[n:], r.SenderHwAddr[:])
	n += copy(b[n:], r.TargetProtoAddr[:])
	n += copy(b[n:], r.TargetHwAddr[:])
	copy(b[n:], r.ClaimedMAC[:])
}

// UnmarshalBinary decodes exactly Size bytes into r. The kind is not
// validated here.
func (r *Request) UnmarshalBinary(b []byte) error {
	if len(b) != Size {
		return errors.Annotatef(ErrShortRecord, "got %d bytes, want %d", len(b), Size)
	}
	r.Kind = Kind(b[0])
	n := 1
	n += copy(r.RequesterMAC[:], b[n:])
	n += copy(r.SenderProtoAddr[:], b[n:])
	n += copy(r.SenderHwAddr[:], b[n:])
	n += copy(r.TargetProtoAddr[:], b[n:])
	n += copy(r.TargetHwAddr[:], b[n:])
	copy(r.ClaimedMAC[:], b[n:])
	return nil
}

// Summary renders the one-line description logged when a worker accepts r.
func (r Request) Summary() string {
	return fmt.Sprintf("%s/%s %s %s/%s [%s]",
		netip.AddrFrom4(r.SenderProtoAddr), net.HardwareAddr(r.SenderHwAddr[:]),
		r.Kind.Marker(),
		netip.AddrFrom4(r.TargetProtoAddr), net.HardwareAddr(r.TargetHwAddr[:]),
		net.HardwareAddr(r.ClaimedMAC[:]))
}
