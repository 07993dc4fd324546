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
	"github.com/spf13/cobra"

	"github.com/containernetworking/arpsentinel/pkg/arpframe"
	"github.com/containernetworking/arpsentinel/pkg/config"
	"github.com/containernetworking/arpsentinel/pkg/errors"
	"github.com/containernetworking/arpsentinel/pkg/worker"
)

// newWorkerCmd is the entry point of the processes started by worker.Spawn.
// It expects the raw socket and job channel on the descriptors Spawn sets up.
func newWorkerCmd(root *rootOptions) *cobra.Command {
	var (
		ifindex int
		llmac   string
	)
	opts := worker.DefaultOptions()
	cmd := &cobra.Command{
		Use:    worker.Command,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ifindex <= 0 {
				return errors.New("--ifindex is required")
			}
			policy, err := arpframe.ParsePolicy(llmac)
			if err != nil {
				return err
			}
			log, err := root.logger(cmd.ErrOrStderr(), config.DefaultLogLevel)
			if err != nil {
				return err
			}
			worker.Main(ifindex, policy, log, opts)
			return nil
		},
	}
	cmd.Flags().IntVar(&ifindex, "ifindex", 0, "interface index")
	cmd.Flags().StringVar(&llmac, "llmac", "same", "link-layer source policy")
	cmd.Flags().IntVar(&opts.MaxErrors, "max-errors", opts.MaxErrors, "consecutive failures tolerated per operation")
	cmd.Flags().IntVar(&opts.MaxRequests, "max-requests", opts.MaxRequests, "scheduled transmissions before slowing down")
	return cmd
}
