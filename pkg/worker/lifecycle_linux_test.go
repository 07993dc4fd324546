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
	"errors"
	"io"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/containernetworking/arpsentinel/pkg/arpframe"
	"github.com/containernetworking/arpsentinel/pkg/arpjob"
	"github.com/containernetworking/arpsentinel/pkg/exec"
	"github.com/containernetworking/arpsentinel/pkg/worker"
)

// fakeCmd keeps its own copy of the job channel on Start, standing in for
// the child's inherited descriptor.
type fakeCmd struct {
	name     string
	args     []string
	extra    []*os.File
	channel  *os.File
	startErr error

	pid     int
	started bool
	killed  bool
	waited  bool
}

var _ exec.Cmd = &fakeCmd{}

func (c *fakeCmd) Start() error {
	if c.startErr != nil {
		return c.startErr
	}
	if len(c.extra) > 1 {
		fd, err := unix.Dup(int(c.extra[1].Fd()))
		if err != nil {
			return err
		}
		c.channel = os.NewFile(uintptr(fd), "channel")
	}
	c.started = true
	return nil
}

func (c *fakeCmd) Wait() error {
	c.waited = true
	if c.channel != nil {
		return c.channel.Close()
	}
	return nil
}

func (c *fakeCmd) Kill() error {
	c.killed = true
	return nil
}

func (c *fakeCmd) Pid() int { return c.pid }
func (c *fakeCmd) SetStderr(io.Writer) {}
func (c *fakeCmd) SetStdout(io.Writer) {}
func (c *fakeCmd) SetExtraFiles(f []*os.File) { c.extra = f }

type fakeExec struct {
	startErr error
	cmds     []*fakeCmd
}

var _ exec.Interface = &fakeExec{}

func (e *fakeExec) Command(name string, args ...string) exec.Cmd {
	c := &fakeCmd{name: name, args: args, startErr: e.startErr, pid: 4000 + len(e.cmds)}
	e.cmds = append(e.cmds, c)
	return c
}

func (e *fakeExec) Executable() (string, error) { return "/usr/bin/arpsentinel", nil }

var _ = Describe("Spawn", func() {
	var (
		fake    *fakeExec
		restore func()
		sock    *os.File
		log     *testLogger
	)

	BeforeEach(func() {
		fake = &fakeExec{}
		restore = worker.SetExecutor(fake)

		var err error
		sock, err = os.Open(os.DevNull)
		Expect(err).NotTo(HaveOccurred())
		log = newTestLogger()
	})

	AfterEach(func() {
		restore()
		sock.Close()
	})

	It("re-executes the binary as a worker", func() {
		client, err := worker.Spawn(sock, 7, arpframe.RandomPolicy, log.Logger, worker.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		defer client.Close()

		Expect(fake.cmds).To(HaveLen(1))
		cmd := fake.cmds[0]
		Expect(cmd.started).To(BeTrue())
		Expect(cmd.name).To(Equal("/usr/bin/arpsentinel"))
		Expect(cmd.args).To(Equal([]string{
			"worker",
			"--ifindex", "7",
			"--llmac", "random",
			"--log-level", "info",
			"--max-errors", "10",
			"--max-requests", "500",
		}))
		Expect(cmd.extra).To(HaveLen(2))
		Expect(cmd.extra[0]).To(BeIdenticalTo(sock))
		Expect(client.Pid()).To(Equal(4000))
	})

	It("delivers jobs to the worker", func() {
		client, err := worker.Spawn(sock, 7, arpframe.SamePolicy, log.Logger, worker.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		client.SetReap(func(int) (bool, error) { return false, nil })
		cmd := fake.cmds[0]

		job := arpjob.Request{
			Kind:            arpjob.ReplyToRequester,
			RequesterMAC:    mustMAC("02:aa:bb:cc:dd:ee"),
			SenderProtoAddr: [4]byte{192, 168, 1, 10},
			ClaimedMAC:      mustMAC("02:00:00:00:00:01"),
		}
		Expect(client.SendJob(job)).To(Succeed())

		buf := make([]byte, arpjob.Size)
		_, err = io.ReadFull(cmd.channel, buf)
		Expect(err).NotTo(HaveOccurred())
		var got arpjob.Request
		Expect(got.UnmarshalBinary(buf)).To(Succeed())
		Expect(got).To(Equal(job))

		Expect(client.Close()).To(Succeed())
		Expect(cmd.killed).To(BeTrue())
		Expect(cmd.waited).To(BeTrue())
	})

	It("reports a worker that fails to start", func() {
		fake.startErr = errors.New("exec format error")
		_, err := worker.Spawn(sock, 3, arpframe.SamePolicy, log.Logger, worker.DefaultOptions())
		Expect(err).To(MatchError(ContainSubstring("failed to start worker for interface 3: exec format error")))
	})
})

var _ = Describe("Args", func() {
	It("carries the worker settings", func() {
		opts := worker.DefaultOptions()
		opts.MaxErrors = 3
		opts.MaxRequests = 20
		args := worker.Args(2, arpframe.FixedPolicy(mustHW("02:00:00:00:00:09")), logrus.DebugLevel, opts)
		Expect(args).To(Equal([]string{
			"worker",
			"--ifindex", "2",
			"--llmac", "02:00:00:00:00:09",
			"--log-level", "debug",
			"--max-errors", "3",
			"--max-requests", "20",
		}))
	})
})
