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

// Package worker runs the per-interface ARP reply process: a single-threaded
// loop that reads jobs from its control process, sends a reply frame right
// away and retransmits it on a fixed schedule.
package worker

import (
	"time"

	"github.com/containernetworking/arpsentinel/pkg/schedule"
)

const (
	DefaultMaxErrors   = 10
	DefaultMaxRequests = 500
	DefaultBackoff     = time.Second
)

// DefaultRetransmits are the offsets from receipt at which a job's frame is
// sent again after the immediate transmission.
var DefaultRetransmits = []time.Duration{2 * time.Second, 5 * time.Second}

// Options tunes a worker and the control side of its job channel.
type Options struct {
	// MaxErrors is the number of consecutive failures of one operation that
	// is still tolerated; one more terminates the process.
	MaxErrors int
	// MaxRequests is the queue length at which the worker starts to slow
	// down intake.
	MaxRequests int
	// Retransmits are the deferred send offsets, relative to job receipt.
	Retransmits []time.Duration
	// Backoff is slept after a tolerated failure or when the queue is busy.
	Backoff time.Duration
	// QueueCapacity bounds the scheduling queue.
	QueueCapacity int
}

func DefaultOptions() Options {
	return Options{
		MaxErrors:     DefaultMaxErrors,
		MaxRequests:   DefaultMaxRequests,
		Retransmits:   append([]time.Duration(nil), DefaultRetransmits...),
		Backoff:       DefaultBackoff,
		QueueCapacity: schedule.DefaultCapacity,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxErrors <= 0 {
		o.MaxErrors = d.MaxErrors
	}
	if o.MaxRequests <= 0 {
		o.MaxRequests = d.MaxRequests
	}
	if o.Retransmits == nil {
		o.Retransmits = d.Retransmits
	}
	if o.Backoff <= 0 {
		o.Backoff = d.Backoff
	}
	if o.QueueCapacity <= 0 {
		o.QueueCapacity = d.QueueCapacity
	}
	return o
}
