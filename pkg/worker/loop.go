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
	"time"

	"github.com/sirupsen/logrus"

	"github.com/containernetworking/arpsentinel/pkg/arpframe"
	"github.com/containernetworking/arpsentinel/pkg/errors"
	"github.com/containernetworking/arpsentinel/pkg/schedule"
)

// Worker answers ARP jobs for one interface.
type Worker struct {
	cfg   arpframe.Config
	jobs  *Receiver
	tx    *Transmitter
	queue *schedule.Queue
	opts  Options
	log   *logrus.Logger

	pollErrs errorCounter
	now      func() time.Time
	sleep    func(time.Duration)
}

// New returns a worker sending on sock for interface ifindex and reading
// jobs from src. The socket is not closed by the worker.
func New(sock Socket, ifindex int, policy arpframe.Policy, src Source, log *logrus.Logger, opts Options) *Worker {
	opts = opts.withDefaults()
	return &Worker{
		cfg:      arpframe.Config{Ifindex: ifindex, Policy: policy},
		jobs:     NewReceiver(src, log, opts),
		tx:       NewTransmitter(sock, log, opts),
		queue:    schedule.New(opts.QueueCapacity),
		opts:     opts,
		log:      log,
		pollErrs: newErrorCounter("poll()", "poll() on job channel failed; aborting...", opts, log),
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Run processes jobs until the process is terminated. It does not return.
func (w *Worker) Run() {
	for {
		w.step()
	}
}

// step waits for the next event, takes at most one new job and then flushes
// every transmission that is due.
func (w *Worker) step() {
	ready, err := w.jobs.Wait(w.timeout())
	if err != nil {
		w.pollErrs.fail(err)
		return
	}
	if ready {
		w.scheduleNewJob()
	}
	w.drainDue()
	w.pollErrs.reset()
}

// timeout is the time left until the earliest queued transmission, or -1
// if nothing is queued.
func (w *Worker) timeout() time.Duration {
	t, ok := w.queue.Peek()
	if !ok {
		return -1
	}
	d := t.DueAt.Sub(w.now())
	if d < 0 {
		d = 0
	}
	return d
}

func (w *Worker) scheduleNewJob() {
	job, ok := w.jobs.Receive()
	if !ok {
		return
	}
	received := w.now()

	frame, dst, err := arpframe.Build(w.cfg, job)
	if err != nil {
		// unknown job kind or link-layer policy
		w.log.WithError(err).Fatal("cannot build frame for job; aborting...")
		return
	}

	_ = w.tx.Transmit(frame, dst)
	w.log.Info(job.Summary())

	if n := w.queue.Len(); n >= w.opts.MaxRequests {
		w.log.Warnf("Too many requests scheduled (%d) sleeping a while...", n)
		w.sleep(w.opts.Backoff)
	}

	for _, after := range w.opts.Retransmits {
		err := w.queue.Push(schedule.Transmission{
			Frame:       frame,
			Destination: dst,
			DueAt:       received.Add(after),
		})
		if errors.Is(err, schedule.ErrQueueFull) {
			w.log.Errorf("schedule queue full (%d), dropping retransmission for %s", w.queue.Len(), dst)
		}
	}
}

func (w *Worker) drainDue() {
	now := w.now()
	for {
		t, ok := w.queue.Peek()
		if !ok || t.DueAt.After(now) {
			return
		}
		if _, err := w.queue.Pop(); err != nil {
			return
		}
		_ = w.tx.Transmit(t.Frame, t.Destination)
	}
}
