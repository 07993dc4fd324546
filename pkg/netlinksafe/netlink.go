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

// Package netlinksafe looks up interfaces over netlink, retrying calls that
// fail with netlink.ErrDumpInterrupted.
//
// ErrDumpInterrupted means something changed while the kernel was dumping,
// so the results may be inconsistent. The partial results are not returned
// along with the error, so all we can do is retry. After maxAttempts the
// last results are used anyway.
package netlinksafe

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"

	"github.com/containernetworking/arpsentinel/pkg/errors"
)

// Arbitrary limit on max attempts at netlink calls if they are repeatedly interrupted.
const maxAttempts = 5

// Link is the part of a network interface a worker needs.
type Link struct {
	Name         string
	Index        int
	HardwareAddr net.HardwareAddr
}

func (l Link) String() string {
	return fmt.Sprintf("%s(%d, %s)", l.Name, l.Index, l.HardwareAddr)
}

// lister is the subset of netlink used here.
type lister interface {
	LinkByName(name string) (netlink.Link, error)
	AddrList(link netlink.Link, family int) ([]netlink.Addr, error)
}

type pkgHandle struct{}

func (pkgHandle) LinkByName(name string) (netlink.Link, error) {
	return netlink.LinkByName(name) //nolint:forbidigo
}

func (pkgHandle) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	return netlink.AddrList(link, family) //nolint:forbidigo
}

var handle lister = pkgHandle{}

func retryOnIntr[T any](f func() (T, error)) (T, error) {
	var v T
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		v, err = f()
		if !errors.Is(err, netlink.ErrDumpInterrupted) {
			return v, err
		}
	}
	logrus.WithError(err).Warnf("netlink call interrupted after %d attempts; using possibly inconsistent results", maxAttempts)
	return v, nil
}

// LinkByName returns the interface called name. On an old kernel
// netlink.LinkByName falls back to a dump of all links, which may be
// interrupted.
func LinkByName(name string) (Link, error) {
	l, err := retryOnIntr(func() (netlink.Link, error) {
		return handle.LinkByName(name)
	})
	if err != nil {
		return Link{}, errors.Annotatef(err, "failed to find interface %q", name)
	}
	if l == nil {
		return Link{}, errors.Errorf("lookup of interface %q kept being interrupted", name)
	}
	attrs := l.Attrs()
	if attrs.Index <= 0 {
		return Link{}, errors.Errorf("interface %q has no index", name)
	}
	return Link{Name: attrs.Name, Index: attrs.Index, HardwareAddr: attrs.HardwareAddr}, nil
}

// IPv4Addrs returns the IPv4 addresses assigned to the interface called name.
func IPv4Addrs(name string) ([]netip.Addr, error) {
	l, err := retryOnIntr(func() (netlink.Link, error) {
		return handle.LinkByName(name)
	})
	if err != nil {
		return nil, errors.Annotatef(err, "failed to find interface %q", name)
	}
	if l == nil {
		return nil, errors.Errorf("lookup of interface %q kept being interrupted", name)
	}
	addrs, err := retryOnIntr(func() ([]netlink.Addr, error) {
		return handle.AddrList(l, netlink.FAMILY_V4)
	})
	if err != nil {
		return nil, errors.Annotatef(err, "failed to list addresses of %q", name)
	}

	var out []netip.Addr
	for _, a := range addrs {
		if a.IPNet == nil {
			continue
		}
		if ip, ok := netip.AddrFromSlice(a.IP.To4()); ok {
			out = append(out, ip)
		}
	}
	return out, nil
}
