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

// arpsentinel defends IPv4 address claims on Ethernet segments by sending
// ARP announcements and replies from per-interface worker processes.
package main

import (
	"context"
	"os"

	"github.com/alexflint/go-filemutex"

	"github.com/containernetworking/arpsentinel/pkg/errors"
)

// exitAlreadyRunning is the status of a run refused because another
// instance holds the lock file.
const exitAlreadyRunning = 2

func exitCode(err error) int {
	if errors.Cause(err) == filemutex.AlreadyLocked {
		return exitAlreadyRunning
	}
	return 1
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(exitCode(err))
	}
}
