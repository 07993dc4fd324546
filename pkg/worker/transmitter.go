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

	"github.com/sirupsen/logrus"

	"github.com/containernetworking/arpsentinel/pkg/arpframe"
	"github.com/containernetworking/arpsentinel/pkg/errors"
)

// Socket sends one link-layer frame and returns the number of bytes written.
type Socket interface {
	Send(frame []byte, dst arpframe.Destination) (int, error)
}

// Transmitter puts frames on the wire. A failed send is not retried: the
// retransmission schedule covers for it.
type Transmitter struct {
	sock Socket
	errs errorCounter
	log  *logrus.Logger
}

func NewTransmitter(sock Socket, log *logrus.Logger, opts Options) *Transmitter {
	opts = opts.withDefaults()
	return &Transmitter{
		sock: sock,
		errs: newErrorCounter("sendto()", "sendto() could not send all bytes; aborting...", opts, log),
		log:  log,
	}
}

// Transmit sends frame once. On failure the error is counted, the caller is
// delayed by the backoff and the error returned; the frame is dropped.
func (t *Transmitter) Transmit(frame []byte, dst arpframe.Destination) error {
	if t.log.IsLevelEnabled(logrus.DebugLevel) {
		if s, err := arpframe.Describe(frame, dst); err == nil {
			t.log.Debug(s)
		}
	}

	n, err := t.sock.Send(frame, dst)
	if n != len(frame) {
		if err == nil {
			err = io.ErrShortWrite
		}
		err = errors.Annotatef(err, "sendto() %s sent %d of %d bytes", dst, n, len(frame))
		t.errs.fail(err)
		return err
	}
	t.errs.reset()
	return nil
}
