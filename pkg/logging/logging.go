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

// Package logging configures the logrus loggers used by the control and
// worker processes.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
)

const DefaultTimestampFormat = "2006-01-02 15:04:05"

// Formatter writes one "<timestamp>: <message>" line per entry, followed by
// the entry's fields in key order.
type Formatter struct {
	TimestampFormat string
}

var _ logrus.Formatter = &Formatter{}

func (f *Formatter) Format(e *logrus.Entry) ([]byte, error) {
	layout := f.TimestampFormat
	if layout == "" {
		layout = DefaultTimestampFormat
	}

	b := e.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}
	b.WriteString(e.Time.Format(layout))
	b.WriteString(": ")
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// New returns a logger writing to w at the named level ("info" if empty).
func New(w io.Writer, level string) (*logrus.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l := logrus.New()
	l.Out = w
	l.Formatter = &Formatter{}
	l.Level = lvl
	return l, nil
}
