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

	"github.com/containernetworking/arpsentinel/pkg/exec"
)

func (w *Worker) Step() { w.step() }

func (w *Worker) QueueLen() int { return w.queue.Len() }

// SetClock replaces every time source and sleeper of w.
func (w *Worker) SetClock(now func() time.Time, sleep func(time.Duration)) {
	w.now = now
	w.sleep = sleep
	w.pollErrs.sleep = sleep
	w.jobs.errs.sleep = sleep
	w.tx.errs.sleep = sleep
}

func (t *Transmitter) SetSleep(sleep func(time.Duration)) { t.errs.sleep = sleep }

func (r *Receiver) SetSleep(sleep func(time.Duration)) { r.errs.sleep = sleep }

func (c *Client) SetSleep(sleep func(time.Duration)) { c.errs.sleep = sleep }

func (c *Client) SetReap(reap func(pid int) (bool, error)) { c.reap = reap }

func SetExecutor(e exec.Interface) (restore func()) {
	old := executor
	executor = e
	return func() { executor = old }
}
