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

// Package arpframe builds the Ethernet/ARP reply frames a worker puts on the
// wire. Building is pure: the only source of non-determinism is the
// RandomPerPacket source MAC policy.
package arpframe

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/mdlayher/arp"
	"github.com/mdlayher/ethernet"

	"github.com/containernetworking/arpsentinel/pkg/arpjob"
	"github.com/containernetworking/arpsentinel/pkg/errors"
)

// ErrUnknownKind is returned for a job kind the builder does not handle.
var ErrUnknownKind = errors.New("unknown job kind")

const (
	// PaddingLen pads the 28 byte ARP message to the 46 byte minimum
	// Ethernet payload.
	PaddingLen = 18
	// FrameLen is the length of every frame returned by Build.
	FrameLen = 14 + 28 + PaddingLen
)

// Config is the per-worker part of frame building.
type Config struct {
	Ifindex int
	Policy  Policy
}

// Destination is the link-layer send target of a frame.
type Destination struct {
	Ifindex      int
	HardwareAddr net.HardwareAddr
}

func (d Destination) String() string {
	return fmt.Sprintf("%s@%d", d.HardwareAddr, d.Ifindex)
}

// padding marks both ends of the trailer so our frames are easy to spot in
// a capture.
func padding() []byte {
	p := make([]byte, PaddingLen)
	p[0], p[1] = 0x66, 0x60
	p[PaddingLen-2], p[PaddingLen-1] = 0x0B, 0x5E
	return p
}

// Build turns job into a complete Ethernet frame carrying an ARP reply and
// the link-layer destination to send it to.
//
// AnnounceOwnership jobs are broadcast with an unspecified target protocol
// address and the claimed MAC as source. ReplyToRequester jobs go to the
// requester, target its sender protocol address and take their source MAC
// from cfg.Policy.
func Build(cfg Config, job arpjob.Request) ([]byte, Destination, error) {
	claimed := net.HardwareAddr(job.ClaimedMAC[:])
	senderIP := netip.AddrFrom4(job.SenderProtoAddr)

	var (
		dst      net.HardwareAddr
		src      net.HardwareAddr
		targetIP netip.Addr
		err      error
	)
	switch job.Kind {
	case arpjob.AnnounceOwnership:
		dst = ethernet.Broadcast
		src = claimed
		targetIP = netip.IPv4Unspecified()
	case arpjob.ReplyToRequester:
		dst = net.HardwareAddr(job.RequesterMAC[:])
		targetIP = senderIP
		src, err = cfg.Policy.resolve(claimed)
		if err != nil {
			return nil, Destination{}, err
		}
	default:
		return nil, Destination{}, errors.Annotatef(ErrUnknownKind, "kind %d", job.Kind)
	}

	// Copies keep the frame independent of the job and of ethernet.Broadcast.
	dst = append(net.HardwareAddr(nil), dst...)
	src = append(net.HardwareAddr(nil), src...)

	p, err := arp.NewPacket(arp.OperationReply, src, senderIP, dst, targetIP)
	if err != nil {
		return nil, Destination{}, errors.Annotate(err, "failed to build ARP reply")
	}
	payload, err := p.MarshalBinary()
	if err != nil {
		return nil, Destination{}, errors.Annotate(err, "failed to marshal ARP reply")
	}

	f := &ethernet.Frame{
		Destination: dst,
		Source:      src,
		EtherType:   ethernet.EtherTypeARP,
		Payload:     append(payload, padding()...),
	}
	b, err := f.MarshalBinary()
	if err != nil {
		return nil, Destination{}, errors.Annotate(err, "failed to marshal ethernet frame")
	}

	return b, Destination{Ifindex: cfg.Ifindex, HardwareAddr: dst}, nil
}

// Describe renders a frame built by Build for diagnostics, in the form
// ether=[dst,src], arp=[sha,spa, tha,tpa], sock=[addr].
func Describe(frame []byte, d Destination) (string, error) {
	var f ethernet.Frame
	if err := f.UnmarshalBinary(frame); err != nil {
		return "", errors.Annotate(err, "invalid ethernet frame")
	}
	if f.EtherType != ethernet.EtherTypeARP {
		return "", errors.Errorf("unexpected ethertype %#04x", uint16(f.EtherType))
	}
	p := new(arp.Packet)
	if err := p.UnmarshalBinary(f.Payload); err != nil {
		return "", errors.Annotate(err, "invalid ARP payload")
	}
	return fmt.Sprintf("ether=[%s,%s], arp=[%s,%s, %s,%s], sock=[%s]",
		f.Destination, f.Source,
		p.SenderHardwareAddr, p.SenderIP,
		p.TargetHardwareAddr, p.TargetIP,
		d.HardwareAddr), nil
}
