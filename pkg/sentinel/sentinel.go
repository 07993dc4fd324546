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

// Package sentinel keeps the configured address claims alive by feeding
// announcement jobs to one worker per interface.
package sentinel

import (
	"context"
	"net"
	"net/netip"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/containernetworking/arpsentinel/pkg/arpjob"
	"github.com/containernetworking/arpsentinel/pkg/config"
	"github.com/containernetworking/arpsentinel/pkg/errors"
	"github.com/containernetworking/arpsentinel/pkg/netlinksafe"
)

// JobSender is the control end of a worker.
type JobSender interface {
	SendJob(job arpjob.Request) error
	Close() error
}

// Target is one interface with its worker and the claims it maintains.
type Target struct {
	Link   netlinksafe.Link
	Worker JobSender
	Jobs   []arpjob.Request
}

// Announcements returns the jobs that claim iface's configured addresses.
// addrs are the interface's own addresses, announced when AnnounceAddrs is
// set. Announcements without a MAC claim the address for link's MAC.
func Announcements(iface config.Interface, link netlinksafe.Link, addrs []netip.Addr) ([]arpjob.Request, error) {
	var jobs []arpjob.Request
	add := func(ip netip.Addr, mac net.HardwareAddr) error {
		if mac == nil {
			mac = link.HardwareAddr
		}
		job, err := arpjob.NewAnnounce(ip, mac)
		if err != nil {
			return errors.Annotatef(err, "cannot announce %s on %s", ip, link.Name)
		}
		jobs = append(jobs, job)
		return nil
	}

	if iface.AnnounceAddrs {
		for _, ip := range addrs {
			if err := add(ip, nil); err != nil {
				return nil, err
			}
		}
	}
	for _, a := range iface.Announce {
		ip, mac, err := a.Parse()
		if err != nil {
			return nil, errors.Annotatef(err, "interface %s", iface.Name)
		}
		if err := add(ip, mac); err != nil {
			return nil, err
		}
	}
	return jobs, nil
}

// Sentinel repeats every target's announcements on a fixed interval.
type Sentinel struct {
	targets  []Target
	interval time.Duration
	log      *logrus.Logger
}

func New(targets []Target, interval time.Duration, log *logrus.Logger) *Sentinel {
	return &Sentinel{targets: targets, interval: interval, log: log}
}

// Announce hands every claim to its worker once. A job the worker channel
// refuses is skipped until the next round.
func (s *Sentinel) Announce() {
	for _, t := range s.targets {
		for _, job := range t.Jobs {
			if err := t.Worker.SendJob(job); err != nil {
				s.log.WithError(err).Warnf("failed to queue announcement on %s", t.Link.Name)
			}
		}
	}
}

// Run announces immediately and then every interval until ctx is done,
// when all workers are stopped.
func (s *Sentinel) Run(ctx context.Context) error {
	defer s.Close()

	s.Announce()
	if s.interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Announce()
		}
	}
}

// Close stops every worker.
func (s *Sentinel) Close() {
	for _, t := range s.targets {
		if err := t.Worker.Close(); err != nil {
			s.log.WithError(err).Debugf("closing worker for %s", t.Link.Name)
		}
	}
}
