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
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/containernetworking/arpsentinel/pkg/logging"
)

type rootOptions struct {
	logLevel string
}

// logger returns a logger at the --log-level flag, or at fallback when the
// flag was not given.
func (o *rootOptions) logger(w io.Writer, fallback string) (*logrus.Logger, error) {
	level := o.logLevel
	if level == "" {
		level = fallback
	}
	return logging.New(w, level)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "arpsentinel",
		Short:        "Defend IPv4 address claims with ARP",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (panic, fatal, error, warn, info, debug, trace)")

	cmd.AddCommand(
		newRunCmd(opts),
		newAnnounceCmd(opts),
		newWorkerCmd(opts),
	)
	return cmd
}
