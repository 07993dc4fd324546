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

package schedule_test

import (
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/containernetworking/arpsentinel/pkg/schedule"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func at(sec int) schedule.Transmission {
	return schedule.Transmission{
		Frame: []byte{byte(sec)},
		DueAt: epoch.Add(time.Duration(sec) * time.Second),
	}
}

func drain(q *schedule.Queue) []int {
	var out []int
	for q.Len() > 0 {
		t, err := q.Pop()
		Expect(err).NotTo(HaveOccurred())
		out = append(out, int(t.DueAt.Sub(epoch)/time.Second))
	}
	return out
}

var _ = Describe("Queue", func() {
	var q *schedule.Queue

	BeforeEach(func() {
		q = schedule.New(8)
	})

	It("starts empty", func() {
		Expect(q.Len()).To(Equal(0))
		_, ok := q.Peek()
		Expect(ok).To(BeFalse())
		_, err := q.Pop()
		Expect(err).To(MatchError(schedule.ErrEmptyQueue))
	})

	It("yields the earliest due time first", func() {
		for _, s := range []int{5, 1, 3} {
			Expect(q.Push(at(s))).To(Succeed())
		}
		Expect(q.Len()).To(Equal(3))
		Expect(drain(q)).To(Equal([]int{1, 3, 5}))
	})

	It("peeks without removing", func() {
		Expect(q.Push(at(4))).To(Succeed())
		Expect(q.Push(at(2))).To(Succeed())

		t, ok := q.Peek()
		Expect(ok).To(BeTrue())
		Expect(t.DueAt).To(Equal(epoch.Add(2 * time.Second)))
		Expect(q.Len()).To(Equal(2))
	})

	It("keeps insertion order for equal due times", func() {
		for i := 0; i < 4; i++ {
			t := at(1)
			t.Frame = []byte{byte(i)}
			Expect(q.Push(t)).To(Succeed())
		}
		for i := 0; i < 4; i++ {
			t, err := q.Pop()
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Frame).To(Equal([]byte{byte(i)}))
		}
	})

	It("refuses to grow beyond its capacity", func() {
		for i := 0; i < q.Cap(); i++ {
			Expect(q.Push(at(i))).To(Succeed())
		}
		Expect(q.Push(at(0))).To(MatchError(schedule.ErrQueueFull))
		Expect(q.Len()).To(Equal(8))

		_, err := q.Pop()
		Expect(err).NotTo(HaveOccurred())
		Expect(q.Push(at(0))).To(Succeed())
	})

	It("defaults the capacity", func() {
		Expect(schedule.New(0).Cap()).To(Equal(schedule.DefaultCapacity))
	})

	It("sorts arbitrary input", func() {
		q = schedule.New(0)
		r := rand.New(rand.NewSource(1))
		for i := 0; i < 500; i++ {
			Expect(q.Push(at(r.Intn(100)))).To(Succeed())
		}
		out := drain(q)
		Expect(out).To(HaveLen(500))
		for i := 1; i < len(out); i++ {
			Expect(out[i]).To(BeNumerically(">=", out[i-1]))
		}
	})
})
