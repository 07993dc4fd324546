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
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/containernetworking/arpsentinel/pkg/arpjob"
	"github.com/containernetworking/arpsentinel/pkg/errors"
	"github.com/containernetworking/arpsentinel/pkg/exec"
)

// Client is the control side of a worker's job channel.
type Client struct {
	w    io.WriteCloser
	proc exec.Cmd
	errs errorCounter
	log  *logrus.Logger

	exited bool
	reap   func(pid int) (bool, error)
}

// NewClient returns a client writing jobs to w. proc is the worker process
// behind w; it may be nil when the worker is not a child of this process.
func NewClient(w io.WriteCloser, proc exec.Cmd, log *logrus.Logger, opts Options) *Client {
	opts = opts.withDefaults()
	return &Client{
		w:    w,
		proc: proc,
		errs: newErrorCounter("write()", "write() could not send all bytes to worker-process; aborting...", opts, log),
		log:  log,
		reap: func(pid int) (bool, error) {
			reaped, _, err := exec.TryReap(pid)
			return reaped, err
		},
	}
}

// SendJob writes job to the worker as one record. A failed write is counted
// and backed off from, then returned; it is not retried, so callers that
// need delivery call SendJob again with the same job.
func (c *Client) SendJob(job arpjob.Request) error {
	c.cleanup()

	b, err := job.MarshalBinary()
	if err != nil {
		return err
	}
	n, err := c.w.Write(b)
	if n != len(b) {
		if err == nil {
			err = io.ErrShortWrite
		}
		err = errors.Annotatef(err, "write() sent %d of %d bytes to worker", n, len(b))
		c.errs.fail(err)
		return err
	}
	c.errs.reset()
	return nil
}

// cleanup collects the worker if it has died.
func (c *Client) cleanup() {
	if c.proc == nil || c.exited {
		return
	}
	pid := c.proc.Pid()
	if pid <= 0 {
		return
	}
	reaped, err := c.reap(pid)
	if err != nil {
		c.log.WithError(err).Debugf("wait4() on worker %d", pid)
		return
	}
	if reaped {
		c.exited = true
		c.log.Errorf("worker process %d has exited", pid)
	}
}

// Pid returns the worker's process id, or 0 if it is not a child.
func (c *Client) Pid() int {
	if c.proc == nil {
		return 0
	}
	return c.proc.Pid()
}

// Close closes the job channel and stops the worker process.
func (c *Client) Close() error {
	err := c.w.Close()
	if c.proc != nil && !c.exited {
		_ = c.proc.Kill()
		_ = c.proc.Wait()
		c.exited = true
	}
	return err
}

// Source is the worker end of a job channel.
type Source interface {
	// Wait blocks until a record can be read or timeout passes. A negative
	// timeout waits forever.
	Wait(timeout time.Duration) (bool, error)
	Read(p []byte) (int, error)
}

// Receiver reads job records from a Source, one exact-size read at a time.
type Receiver struct {
	src  Source
	errs errorCounter
}

func NewReceiver(src Source, log *logrus.Logger, opts Options) *Receiver {
	opts = opts.withDefaults()
	return &Receiver{
		src:  src,
		errs: newErrorCounter("read()", "read() returns invalid job record; aborting...", opts, log),
	}
}

// Wait blocks until a job is ready or timeout passes.
func (r *Receiver) Wait(timeout time.Duration) (bool, error) {
	return r.src.Wait(timeout)
}

// Receive reads one job. Anything but a full record, including end of
// channel, is counted as a failure and no job is returned.
func (r *Receiver) Receive() (arpjob.Request, bool) {
	var job arpjob.Request
	buf := make([]byte, arpjob.Size)

	n, err := r.src.Read(buf)
	if n != arpjob.Size {
		switch {
		case err != nil:
		case n == 0:
			err = io.EOF
		default:
			err = io.ErrUnexpectedEOF
		}
		r.errs.fail(errors.Annotatef(err, "read() got %d of %d bytes", n, arpjob.Size))
		return job, false
	}
	if err := job.UnmarshalBinary(buf); err != nil {
		r.errs.fail(err)
		return job, false
	}
	r.errs.reset()
	return job, true
}
