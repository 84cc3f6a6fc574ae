package contract

import (
	"context"
	"reflect"

	"chat-room/domain"
)

// Outbox is the delivery side of one session's handle. Deliver never blocks;
// it fails when the session is gone or its buffer is saturated.
type Outbox interface {
	Deliver(m domain.Message) error
	Close()
}

// Entry is one registry pair captured by a snapshot.
type Entry struct {
	Name string
	Out  Outbox
}

type IRegistry interface {
	Register(name string, out Outbox) error
	Deregister(name string) bool
	Get(name string) (Outbox, bool)
	Snapshot() []Entry
	ListSummaries() []string
	Len() int
	Clear() []Entry
}

type IBroadcaster interface {
	BroadcastAll(m domain.Message, exclude string)
	SendTo(name string, m domain.Message) error
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
