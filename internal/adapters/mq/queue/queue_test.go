package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/attnrisk/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ticket(id string) model.Ticket {
	return model.Ticket{JobID: id, Path: "/tmp/" + id, Filename: id + ".mp3", EnqueuedAt: time.Now()}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(2))

		So(q.Len(ctx), ShouldEqual, 0)
		So(q.Capacity(), ShouldEqual, 2)

		Convey("Tickets come out in order", func() {
			So(q.Enqueue(ctx, ticket("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, ticket("b")), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 2)

			first, ok := q.Dequeue(ctx)
			So(ok, ShouldBeTrue)
			So(first.JobID, ShouldEqual, "a")
			second, ok := q.Dequeue(ctx)
			So(ok, ShouldBeTrue)
			So(second.JobID, ShouldEqual, "b")
			So(q.Len(ctx), ShouldEqual, 0)
		})

		Convey("Dequeue on an empty queue returns when the context ends", func() {
			cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			_, ok := q.Dequeue(cctx)
			So(ok, ShouldBeFalse)
		})

		Convey("Drain empties the buffer without blocking", func() {
			So(q.Drain(), ShouldBeEmpty)
			So(q.Enqueue(ctx, ticket("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, ticket("b")), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			left := q.Drain()
			So(left, ShouldHaveLength, 2)
			So(left[0].JobID, ShouldEqual, "a")
			So(q.Len(ctx), ShouldEqual, 0)

			_, ok := q.Dequeue(ctx)
			So(ok, ShouldBeFalse)
		})

		Convey("A full queue refuses more work", func() {
			So(q.Enqueue(ctx, ticket("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, ticket("b")), ShouldBeTrue)
			So(q.Enqueue(ctx, ticket("c")), ShouldBeFalse)
			So(q.Len(ctx), ShouldEqual, 2)
		})

		Convey("A closed queue refuses work but drains what it holds", func() {
			So(q.Enqueue(ctx, ticket("a")), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
			So(q.IsClosed(), ShouldBeTrue)
			So(q.Enqueue(ctx, ticket("b")), ShouldBeFalse)

			first, ok := q.Dequeue(ctx)
			So(ok, ShouldBeTrue)
			So(first.JobID, ShouldEqual, "a")
			_, ok = q.Dequeue(ctx)
			So(ok, ShouldBeFalse)
		})

		Convey("A cancelled context refuses work", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			q2 := NewInMemoryQueue(WithCapacity(1))
			So(q2.Enqueue(ctx, ticket("a")), ShouldBeTrue)
			So(q2.Enqueue(cctx, ticket("b")), ShouldBeFalse)
		})
	})
}

func TestInMemoryQueueConcurrent(t *testing.T) {
	Convey("Concurrent producers never exceed capacity", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(50))

		var wg sync.WaitGroup
		var mu sync.Mutex
		accepted := 0
		for p := 0; p < 10; p++ {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := 0; i < 10; i++ {
					if q.Enqueue(ctx, ticket(fmt.Sprintf("%d-%d", p, i))) {
						mu.Lock()
						accepted++
						mu.Unlock()
					}
				}
			}(p)
		}
		wg.Wait()

		So(accepted, ShouldEqual, 50)
		So(q.Len(ctx), ShouldEqual, 50)
	})
}
