//go:generate go run go.uber.org/mock/mockgen -source=worker.go -destination=mocks/mock_worker.go -package=mocks

// Package runtime runs the engine's long-lived goroutines: the session
// event loop and the directory pollers. It knows nothing about rooms or
// messages.
package runtime

import (
	"context"
	"reflect"
)

// Worker is a long-running unit supervised by Supervisor. A nil error
// return means the worker finished for good and must not be restarted.
type Worker interface {
	Run(ctx context.Context) error
}

// WorkerName resolves a worker's type name for logs, so workers do not
// have to name themselves.
func WorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
