// Copyright 2017 CNI authors
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

// Package exec wraps os/exec so process creation can be faked in tests.
package exec

import (
	"io"
	"os"
	osexec "os/exec"
)

type cmdWrapper osexec.Cmd

var _ Cmd = &cmdWrapper{}

type Cmd interface {
	Start() error
	Wait() error
	Kill() error
	Pid() int
	SetStderr(io.Writer)
	SetStdout(io.Writer)
	// SetExtraFiles passes files to the child as descriptors 3, 4, ...
	SetExtraFiles([]*os.File)
}

type Interface interface {
	Command(cmd string, args ...string) Cmd
	Executable() (string, error)
}

type executor struct{}

func New() Interface {
	return &executor{}
}

func (executor *executor) Command(cmd string, args ...string) Cmd {
	return (*cmdWrapper)(osexec.Command(cmd, args...))
}

// Executable returns the path of the running binary, used to re-execute
// it as a helper process.
func (executor *executor) Executable() (string, error) {
	return os.Executable()
}

func (cmd *cmdWrapper) Start() error {
	return (*osexec.Cmd)(cmd).Start()
}

func (cmd *cmdWrapper) Wait() error {
	return (*osexec.Cmd)(cmd).Wait()
}

// Kill sends SIGKILL to a started process.
func (cmd *cmdWrapper) Kill() error {
	if cmd.Process == nil {
		return os.ErrProcessDone
	}
	return cmd.Process.Kill()
}

// Pid returns the process id of a started process, or 0.
func (cmd *cmdWrapper) Pid() int {
	if cmd.Process == nil {
		return 0
	}
	return cmd.Process.Pid
}

func (cmd *cmdWrapper) SetStdout(out io.Writer) {
	cmd.Stdout = out
}

func (cmd *cmdWrapper) SetStderr(out io.Writer) {
	cmd.Stderr = out
}

func (cmd *cmdWrapper) SetExtraFiles(files []*os.File) {
	cmd.ExtraFiles = files
}
