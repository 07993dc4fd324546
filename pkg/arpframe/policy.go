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

package arpframe

import (
	"fmt"
	"net"
	"strings"

	"github.com/containernetworking/arpsentinel/pkg/errors"
	"github.com/containernetworking/arpsentinel/pkg/utils/hwaddr"
)

// ErrUnknownPolicy is returned when a Policy carries a kind this package
// does not know how to resolve.
var ErrUnknownPolicy = errors.New("unknown source MAC policy")

// PolicyKind selects the source hardware address of reply frames.
type PolicyKind uint8

const (
	// SameAsClaimed uses the job's claimed MAC.
	SameAsClaimed PolicyKind = iota + 1
	// Fixed uses a configured address for every frame.
	Fixed
	// RandomPerPacket generates a locally administered address per frame.
	RandomPerPacket
)

// Policy is the source MAC policy attached to a worker at creation.
type Policy struct {
	Kind PolicyKind
	// Addr is only meaningful for Fixed.
	Addr net.HardwareAddr
}

var (
	SamePolicy   = Policy{Kind: SameAsClaimed}
	RandomPolicy = Policy{Kind: RandomPerPacket}
)

// FixedPolicy returns a policy that always uses addr.
func FixedPolicy(addr net.HardwareAddr) Policy {
	return Policy{Kind: Fixed, Addr: addr}
}

// ParsePolicy accepts "same" (or an empty string), "random", or an Ethernet
// MAC address for a fixed source.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "same":
		return SamePolicy, nil
	case "random":
		return RandomPolicy, nil
	}
	hw, err := net.ParseMAC(s)
	if err != nil {
		return Policy{}, errors.Annotatef(err, "invalid source MAC policy %q", s)
	}
	if len(hw) != 6 {
		return Policy{}, errors.Errorf("invalid source MAC policy %q: not an Ethernet address", s)
	}
	return FixedPolicy(hw), nil
}

func (p Policy) String() string {
	switch p.Kind {
	case SameAsClaimed:
		return "same"
	case RandomPerPacket:
		return "random"
	case Fixed:
		return p.Addr.String()
	default:
		return fmt.Sprintf("PolicyKind(%d)", uint8(p.Kind))
	}
}

var generateMAC = hwaddr.GenerateMAC

func (p Policy) resolve(claimed net.HardwareAddr) (net.HardwareAddr, error) {
	switch p.Kind {
	case SameAsClaimed:
		return claimed, nil
	case Fixed:
		if len(p.Addr) != 6 {
			return nil, errors.Errorf("fixed source MAC %q is not an Ethernet address", p.Addr)
		}
		return p.Addr, nil
	case RandomPerPacket:
		return generateMAC(), nil
	default:
		return nil, errors.Annotatef(ErrUnknownPolicy, "policy %s", p)
	}
}
