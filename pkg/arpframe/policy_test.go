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

package arpframe_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/containernetworking/arpsentinel/pkg/arpframe"
)

var _ = Describe("ParsePolicy", func() {
	DescribeTable("valid policies",
		func(in, want string, kind arpframe.PolicyKind) {
			p, err := arpframe.ParsePolicy(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Kind).To(Equal(kind))
			Expect(p.String()).To(Equal(want))
		},
		Entry("empty", "", "same", arpframe.SameAsClaimed),
		Entry("same", "same", "same", arpframe.SameAsClaimed),
		Entry("case insensitive", "RANDOM", "random", arpframe.RandomPerPacket),
		Entry("fixed", "02:00:00:00:12:34", "02:00:00:00:12:34", arpframe.Fixed),
	)

	It("rejects garbage", func() {
		_, err := arpframe.ParsePolicy("sometimes")
		Expect(err).To(MatchError(ContainSubstring(`invalid source MAC policy "sometimes"`)))
	})

	It("rejects non-Ethernet addresses", func() {
		_, err := arpframe.ParsePolicy("00:00:00:00:fe:80:00:00:00:00:00:00:02:00:5e:10:00:00:00:01")
		Expect(err).To(HaveOccurred())
	})
})
