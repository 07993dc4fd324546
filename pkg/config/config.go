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

// Package config loads the arpsentinel daemon configuration.
package config

import (
	"bytes"
	"net"
	"net/netip"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/containernetworking/arpsentinel/pkg/arpframe"
	"github.com/containernetworking/arpsentinel/pkg/errors"
	"github.com/containernetworking/arpsentinel/pkg/worker"
)

const (
	DefaultAnnounceInterval = time.Minute
	DefaultLockFile         = "/run/arpsentinel.lock"
	DefaultLogLevel         = "info"
)

// Config is the daemon configuration file.
type Config struct {
	Interfaces []Interface `yaml:"interfaces"`

	// AnnounceInterval is how often static announcements are repeated.
	AnnounceInterval time.Duration `yaml:"announceInterval"`
	LockFile         string        `yaml:"lockFile"`
	LogLevel         string        `yaml:"logLevel"`

	// Worker tunables; zero means the worker default.
	MaxErrors   int `yaml:"maxErrors"`
	MaxRequests int `yaml:"maxRequests"`
}

// Interface runs one worker.
type Interface struct {
	Name string `yaml:"name"`
	// LLMAC is the link-layer source policy: "same", "random" or a MAC.
	LLMAC string `yaml:"llmac"`
	// AnnounceAddrs announces every IPv4 address of the interface with
	// the interface's own MAC.
	AnnounceAddrs bool           `yaml:"announceAddrs"`
	Announce      []Announcement `yaml:"announce"`
}

// Announcement claims IP for MAC. An empty MAC means the interface's own.
type Announcement struct {
	IP  string `yaml:"ip"`
	MAC string `yaml:"mac"`
}

// Load reads, defaults and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotate(err, "failed to read config")
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Annotatef(err, "invalid config %s", path)
	}
	return c, nil
}

// Parse decodes a YAML document, rejecting unknown keys.
func Parse(data []byte) (*Config, error) {
	c := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return nil, errors.Annotate(err, "failed to parse YAML")
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) SetDefaults() {
	if c.AnnounceInterval == 0 {
		c.AnnounceInterval = DefaultAnnounceInterval
	}
	if c.LockFile == "" {
		c.LockFile = DefaultLockFile
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	for i := range c.Interfaces {
		if c.Interfaces[i].LLMAC == "" {
			c.Interfaces[i].LLMAC = arpframe.SamePolicy.String()
		}
	}
}

func (c *Config) Validate() error {
	if len(c.Interfaces) == 0 {
		return errors.New("no interfaces configured")
	}
	if c.AnnounceInterval < 0 {
		return errors.Errorf("announceInterval must be positive, got %s", c.AnnounceInterval)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Annotate(err, "invalid logLevel")
	}
	if c.MaxErrors < 0 || c.MaxRequests < 0 {
		return errors.New("maxErrors and maxRequests must not be negative")
	}

	seen := map[string]bool{}
	for i, iface := range c.Interfaces {
		if iface.Name == "" {
			return errors.Errorf("interfaces[%d]: missing name", i)
		}
		if seen[iface.Name] {
			return errors.Errorf("interfaces[%d]: duplicate interface %q", i, iface.Name)
		}
		seen[iface.Name] = true

		if _, err := iface.Policy(); err != nil {
			return errors.Annotatef(err, "interface %s", iface.Name)
		}
		for j, a := range iface.Announce {
			if _, _, err := a.Parse(); err != nil {
				return errors.Annotatef(err, "interface %s: announce[%d]", iface.Name, j)
			}
		}
	}
	return nil
}

// WorkerOptions returns the worker settings, with defaults for unset fields.
func (c *Config) WorkerOptions() worker.Options {
	opts := worker.DefaultOptions()
	if c.MaxErrors > 0 {
		opts.MaxErrors = c.MaxErrors
	}
	if c.MaxRequests > 0 {
		opts.MaxRequests = c.MaxRequests
	}
	return opts
}

func (i Interface) Policy() (arpframe.Policy, error) {
	return arpframe.ParsePolicy(i.LLMAC)
}

// Parse returns the claimed address and MAC. mac is nil when the
// announcement uses the interface's own.
func (a Announcement) Parse() (netip.Addr, net.HardwareAddr, error) {
	ip, err := netip.ParseAddr(a.IP)
	if err != nil {
		return netip.Addr{}, nil, errors.Annotate(err, "invalid ip")
	}
	if !ip.Is4() {
		return netip.Addr{}, nil, errors.Errorf("%s is not an IPv4 address", ip)
	}
	if a.MAC == "" {
		return ip, nil, nil
	}
	mac, err := net.ParseMAC(a.MAC)
	if err != nil {
		return netip.Addr{}, nil, errors.Annotate(err, "invalid mac")
	}
	if len(mac) != 6 {
		return netip.Addr{}, nil, errors.Errorf("%s is not an Ethernet address", mac)
	}
	return ip, mac, nil
}
