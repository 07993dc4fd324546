// Copyright 2016 CNI authors
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

package hwaddr

import (
	"crypto/rand"
	"net"
)

// The first byte of a MAC address has two special bits.
// 1. The least-significant bit: 0 for unicast and 1 for multicast
// 2. The second-least-significant bit: 0 for globally unique and 1 for locally administered
// Spoofed source addresses must never collide with a vendor OUI or be taken
// for a group address, so the two LSb of the MSB are forced to 10 and the
// remaining 46 bits are random.
const (
	multicastBit = 0x01
	localBit     = 0x02
)

// GenerateMAC returns a fresh random unicast, locally administered MAC address.
func GenerateMAC() net.HardwareAddr {
	hw := make(net.HardwareAddr, 6)
	_, _ = rand.Read(hw)
	hw[0] = (hw[0] &^ multicastBit) | localBit
	return hw
}

// IsLocal reports whether hw is a unicast, locally administered address.
func IsLocal(hw net.HardwareAddr) bool {
	return len(hw) > 0 && hw[0]&multicastBit == 0 && hw[0]&localBit != 0
}
