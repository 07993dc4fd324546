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
	"context"
	"net/netip"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-filemutex"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/containernetworking/arpsentinel/pkg/config"
	"github.com/containernetworking/arpsentinel/pkg/errors"
	"github.com/containernetworking/arpsentinel/pkg/netlinksafe"
	"github.com/containernetworking/arpsentinel/pkg/rawsock"
	"github.com/containernetworking/arpsentinel/pkg/sentinel"
	"github.com/containernetworking/arpsentinel/pkg/worker"
)

const defaultConfigPath = "/etc/arpsentinel/arpsentinel.yaml"

func newRunCmd(root *rootOptions) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Defend the configured address claims until stopped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log, err := root.logger(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			return runDaemon(cmd.Context(), cfg, log)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "configuration file")
	return cmd
}

func runDaemon(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	lock, err := filemutex.New(cfg.LockFile)
	if err != nil {
		return errors.Annotatef(err, "failed to open lock file %s", cfg.LockFile)
	}
	defer lock.Close()
	if err := lock.TryLock(); err != nil {
		return errors.Annotatef(err, "another instance holds %s", cfg.LockFile)
	}
	defer lock.Unlock()

	targets, err := startWorkers(cfg, log)
	if err != nil {
		return err
	}
	s := sentinel.New(targets, cfg.AnnounceInterval, log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.WithError(err).Warn("failed to notify systemd")
	} else if sent {
		log.Debug("notified systemd")
	}
	log.Infof("defending claims on %d interfaces", len(targets))

	err = s.Run(ctx)
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	log.Info("stopped")
	return err
}

func startWorkers(cfg *config.Config, log *logrus.Logger) ([]sentinel.Target, error) {
	opts := cfg.WorkerOptions()
	var targets []sentinel.Target
	for _, iface := range cfg.Interfaces {
		t, err := startWorker(iface, opts, log)
		if err != nil {
			for _, t := range targets {
				_ = t.Worker.Close()
			}
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func startWorker(iface config.Interface, opts worker.Options, log *logrus.Logger) (sentinel.Target, error) {
	link, err := netlinksafe.LinkByName(iface.Name)
	if err != nil {
		return sentinel.Target{}, err
	}
	policy, err := iface.Policy()
	if err != nil {
		return sentinel.Target{}, err
	}

	var addrs []netip.Addr
	if iface.AnnounceAddrs {
		if addrs, err = netlinksafe.IPv4Addrs(iface.Name); err != nil {
			return sentinel.Target{}, err
		}
	}
	jobs, err := sentinel.Announcements(iface, link, addrs)
	if err != nil {
		return sentinel.Target{}, err
	}

	sock, err := rawsock.Open(link.Index)
	if err != nil {
		return sentinel.Target{}, errors.Annotatef(err, "interface %s", link.Name)
	}
	// the worker inherits its own copy
	defer sock.Close()

	client, err := worker.Spawn(sock.File(), link.Index, policy, log, opts)
	if err != nil {
		return sentinel.Target{}, err
	}
	log.Infof("worker %d on %s, %d claims, llmac %s", client.Pid(), link, len(jobs), policy)
	return sentinel.Target{Link: link, Worker: client, Jobs: jobs}, nil
}
