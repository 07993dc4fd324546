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

package worker_test

import (
	"io"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/containernetworking/arpsentinel/pkg/arpframe"
	"github.com/containernetworking/arpsentinel/pkg/arpjob"
	"github.com/containernetworking/arpsentinel/pkg/worker"
)

var _ = Describe("Transmitter", func() {
	var (
		clock *fakeClock
		sock  *fakeSocket
		log   *testLogger
		tx    *worker.Transmitter
		frame []byte
		dst   arpframe.Destination
	)

	BeforeEach(func() {
		clock = newFakeClock()
		sock = &fakeSocket{clock: clock}
		log = newTestLogger()
		opts := worker.DefaultOptions()
		opts.MaxErrors = 2
		tx = worker.NewTransmitter(sock, log.Logger, opts)
		tx.SetSleep(clock.Sleep)

		var err error
		job := arpjob.Request{Kind: arpjob.AnnounceOwnership, ClaimedMAC: mustMAC("02:00:00:00:00:01")}
		frame, dst, err = arpframe.Build(arpframe.Config{Ifindex: 2, Policy: arpframe.SamePolicy}, job)
		Expect(err).NotTo(HaveOccurred())
	})

	It("sends the frame once", func() {
		Expect(tx.Transmit(frame, dst)).To(Succeed())
		Expect(sock.sent).To(HaveLen(1))
		Expect(sock.sent[0].frame).To(Equal(frame))
		Expect(sock.sent[0].dst.HardwareAddr).To(Equal(net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}))
		Expect(clock.sleeps).To(BeEmpty())
	})

	It("counts short writes and backs off", func() {
		sock.results = []sendResult{{n: 14}}
		err := tx.Transmit(frame, dst)
		Expect(err).To(MatchError(io.ErrShortWrite))
		Expect(err).To(MatchError(ContainSubstring("sent 14 of 60 bytes")))
		Expect(sock.sent).To(HaveLen(1))
		Expect(clock.sleeps).To(Equal([]time.Duration{time.Second}))
	})

	It("terminates when sending keeps failing", func() {
		sock.results = []sendResult{{err: unix.ENETDOWN}, {err: unix.ENETDOWN}, {err: unix.ENETDOWN}}
		Expect(tx.Transmit(frame, dst)).To(MatchError(unix.ENETDOWN))
		Expect(tx.Transmit(frame, dst)).To(MatchError(unix.ENETDOWN))
		Expect(log.exits).To(BeEmpty())
		Expect(tx.Transmit(frame, dst)).To(HaveOccurred())
		Expect(log.exits).To(Equal([]int{1}))
		Expect(log.out.String()).To(ContainSubstring("sendto() could not send all bytes; aborting..."))
	})

	It("resets the count after a successful send", func() {
		sock.results = []sendResult{{err: unix.ENETDOWN}, {err: unix.ENETDOWN}, {n: 60}, {err: unix.ENETDOWN}, {err: unix.ENETDOWN}}
		for i := 0; i < 5; i++ {
			_ = tx.Transmit(frame, dst)
		}
		Expect(log.exits).To(BeEmpty())
	})

	It("describes frames at debug level", func() {
		log.SetLevel(logrus.DebugLevel)
		Expect(tx.Transmit(frame, dst)).To(Succeed())
		Expect(log.out.String()).To(ContainSubstring(
			"ether=[ff:ff:ff:ff:ff:ff,02:00:00:00:00:01], arp=[02:00:00:00:00:01,0.0.0.0, ff:ff:ff:ff:ff:ff,0.0.0.0], sock=[ff:ff:ff:ff:ff:ff]"))
	})
})
