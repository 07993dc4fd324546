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

package worker

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/containernetworking/arpsentinel/pkg/arpframe"
	"github.com/containernetworking/arpsentinel/pkg/errors"
	"github.com/containernetworking/arpsentinel/pkg/exec"
	"github.com/containernetworking/arpsentinel/pkg/rawsock"
)

// Descriptors a worker process inherits from its control process.
const (
	SocketFD  = 3
	ChannelFD = 4
)

// Command is the hidden subcommand the binary is re-executed with.
const Command = "worker"

var executor = exec.New()

// Spawn starts the worker process for interface ifindex. The child gets
// its own copy of sock and the read end of a fresh pipe; the returned
// Client owns the write end. sock stays open and owned by the caller.
func Spawn(sock *os.File, ifindex int, policy arpframe.Policy, log *logrus.Logger, opts Options) (*Client, error) {
	opts = opts.withDefaults()

	exe, err := executor.Executable()
	if err != nil {
		return nil, errors.Annotate(err, "failed to locate worker binary")
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, errors.Annotate(err, "failed to create job channel")
	}

	cmd := executor.Command(exe, Args(ifindex, policy, log.GetLevel(), opts)...)
	cmd.SetExtraFiles([]*os.File{sock, r})
	cmd.SetStdout(os.Stdout)
	cmd.SetStderr(os.Stderr)
	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, errors.Annotatef(err, "failed to start worker for interface %d", ifindex)
	}
	// only the child reads from the channel
	r.Close()

	log.Debugf("started worker %d for interface %d (llmac %s)", cmd.Pid(), ifindex, policy)
	return NewClient(w, cmd, log, opts), nil
}

// Args returns the command line a worker process is started with.
func Args(ifindex int, policy arpframe.Policy, level logrus.Level, opts Options) []string {
	return []string{
		Command,
		"--ifindex", strconv.Itoa(ifindex),
		"--llmac", policy.String(),
		"--log-level", level.String(),
		"--max-errors", strconv.Itoa(opts.MaxErrors),
		"--max-requests", strconv.Itoa(opts.MaxRequests),
	}
}

// Main is the body of a worker process started by Spawn. It never returns.
func Main(ifindex int, policy arpframe.Policy, log *logrus.Logger, opts Options) {
	sock := rawsock.FromFD(SocketFD, fmt.Sprintf("arp@%d", ifindex))
	w := New(sock, ifindex, policy, NewFDSource(ChannelFD), log, opts)
	w.Run()

	log.Fatal("worker loop returned; aborting...")
}
