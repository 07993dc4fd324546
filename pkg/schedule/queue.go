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

// Package schedule holds pending frame transmissions ordered by due time.
package schedule

import (
	"container/heap"
	"time"

	"github.com/containernetworking/arpsentinel/pkg/arpframe"
	"github.com/containernetworking/arpsentinel/pkg/errors"
)

// DefaultCapacity is the number of slots a Queue gets when none is given.
const DefaultCapacity = 1023

var (
	ErrEmptyQueue = errors.New("schedule queue is empty")
	ErrQueueFull  = errors.New("schedule queue is full")
)

// Transmission is a built frame waiting to be sent.
type Transmission struct {
	Frame       []byte
	Destination arpframe.Destination
	DueAt       time.Time
}

type entry struct {
	Transmission
	seq uint64
}

type entries []entry

func (e entries) Len() int { return len(e) }

func (e entries) Less(i, j int) bool {
	if e[i].DueAt.Equal(e[j].DueAt) {
		return e[i].seq < e[j].seq
	}
	return e[i].DueAt.Before(e[j].DueAt)
}

func (e entries) Swap(i, j int) { e[i], e[j] = e[j], e[i] }

func (e *entries) Push(x any) { *e = append(*e, x.(entry)) }

func (e *entries) Pop() any {
	old := *e
	n := len(old)
	x := old[n-1]
	old[n-1] = entry{}
	*e = old[:n-1]
	return x
}

// Queue yields the transmission with the earliest DueAt first; equal due
// times come out in insertion order. It is not safe for concurrent use.
type Queue struct {
	items    entries
	capacity int
	seq      uint64
}

// New returns an empty queue holding at most capacity transmissions.
// A capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		items:    make(entries, 0, capacity),
		capacity: capacity,
	}
}

// Len returns the number of pending transmissions.
func (q *Queue) Len() int { return len(q.items) }

// Cap returns the maximum number of pending transmissions.
func (q *Queue) Cap() int { return q.capacity }

// Push schedules t, failing with ErrQueueFull when no slot is left.
func (q *Queue) Push(t Transmission) error {
	if len(q.items) >= q.capacity {
		return ErrQueueFull
	}
	heap.Push(&q.items, entry{Transmission: t, seq: q.seq})
	q.seq++
	return nil
}

// Peek returns the earliest transmission without removing it.
func (q *Queue) Peek() (Transmission, bool) {
	if len(q.items) == 0 {
		return Transmission{}, false
	}
	return q.items[0].Transmission, true
}

// Pop removes and returns the earliest transmission.
func (q *Queue) Pop() (Transmission, error) {
	if len(q.items) == 0 {
		return Transmission{}, ErrEmptyQueue
	}
	return heap.Pop(&q.items).(entry).Transmission, nil
}
