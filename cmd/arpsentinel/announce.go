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

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/containernetworking/arpsentinel/pkg/arpframe"
	"github.com/containernetworking/arpsentinel/pkg/config"
	"github.com/containernetworking/arpsentinel/pkg/errors"
	"github.com/containernetworking/arpsentinel/pkg/netlinksafe"
	"github.com/containernetworking/arpsentinel/pkg/rawsock"
	"github.com/containernetworking/arpsentinel/pkg/sentinel"
	"github.com/containernetworking/arpsentinel/pkg/worker"
)

type announceOptions struct {
	iface string
	ip    string
	mac   string
	llmac string
}

// validate checks the flags without touching the system.
func (o *announceOptions) validate() (config.Interface, error) {
	if o.iface == "" {
		return config.Interface{}, errors.New("--interface is required")
	}
	a := config.Announcement{IP: o.ip, MAC: o.mac}
	if _, _, err := a.Parse(); err != nil {
		return config.Interface{}, err
	}
	if _, err := arpframe.ParsePolicy(o.llmac); err != nil {
		return config.Interface{}, err
	}
	return config.Interface{Name: o.iface, LLMAC: o.llmac, Announce: []config.Announcement{a}}, nil
}

func newAnnounceCmd(root *rootOptions) *cobra.Command {
	o := &announceOptions{}
	cmd := &cobra.Command{
		Use:   "announce",
		Short: "Announce one address and exit once its retransmissions are sent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			iface, err := o.validate()
			if err != nil {
				return err
			}
			log, err := root.logger(cmd.ErrOrStderr(), config.DefaultLogLevel)
			if err != nil {
				return err
			}
			policy, _ := iface.Policy()

			link, err := netlinksafe.LinkByName(iface.Name)
			if err != nil {
				return err
			}
			jobs, err := sentinel.Announcements(iface, link, nil)
			if err != nil {
				return err
			}

			sock, err := rawsock.Open(link.Index)
			if err != nil {
				return errors.Annotatef(err, "interface %s", link.Name)
			}
			defer sock.Close()

			opts := worker.DefaultOptions()
			client, err := worker.Spawn(sock.File(), link.Index, policy, log, opts)
			if err != nil {
				return err
			}
			defer client.Close()

			for _, job := range jobs {
				if err := client.SendJob(job); err != nil {
					return err
				}
			}
			time.Sleep(settleTime(opts))
			return nil
		},
	}
	cmd.Flags().StringVarP(&o.iface, "interface", "i", "", "interface to announce on")
	cmd.Flags().StringVar(&o.ip, "ip", "", "IPv4 address to claim")
	cmd.Flags().StringVar(&o.mac, "mac", "", "MAC address owning the claim (default: the interface's)")
	cmd.Flags().StringVar(&o.llmac, "llmac", "same", `link-layer source: "same", "random" or a MAC`)
	_ = cmd.MarkFlagRequired("interface")
	_ = cmd.MarkFlagRequired("ip")
	return cmd
}

// settleTime is how long the worker needs to send the last retransmission.
func settleTime(opts worker.Options) time.Duration {
	var last time.Duration
	for _, d := range opts.Retransmits {
		if d > last {
			last = d
		}
	}
	return last + time.Second
}
