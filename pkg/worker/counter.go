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
)

// errorCounter tracks consecutive failures of a single operation. Each
// instance escalates on its own, so a broken channel and a broken socket
// show up separately in the logs.
type errorCounter struct {
	op    string
	abort string
	max   int
	count int

	backoff time.Duration
	sleep   func(time.Duration)
	log     *logrus.Logger
}

func newErrorCounter(op, abort string, opts Options, log *logrus.Logger) errorCounter {
	return errorCounter{
		op:      op,
		abort:   abort,
		max:     opts.MaxErrors,
		backoff: opts.Backoff,
		sleep:   time.Sleep,
		log:     log,
	}
}

// fail records one failure. Past the threshold it logs err and the abort
// message and terminates the process; otherwise it backs off.
func (c *errorCounter) fail(err error) {
	c.count++
	if c.count > c.max {
		c.log.WithError(err).Errorf("%s failed %d times in a row", c.op, c.count)
		c.log.Fatal(c.abort)
		return
	}
	c.log.WithError(err).Warnf("%s failed (%d/%d)", c.op, c.count, c.max)
	c.sleep(c.backoff)
}

func (c *errorCounter) reset() {
	c.count = 0
}
