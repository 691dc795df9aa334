package fault

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
)

// Kind classifies a recovered fault
type Kind string

const (
	// KindOutOfMemory covers allocation failures reported by the runtime
	KindOutOfMemory Kind = "out_of_memory"

	// KindRuntime covers runtime errors (nil dereference, index range, etc.)
	KindRuntime Kind = "runtime"

	// KindUser covers explicit panics raised by task code
	KindUser Kind = "user"
)

// Fault describes a recovered panic value with its classification and the
// stack captured at recovery time.
type Fault struct {
	Kind      Kind
	Recovered any
	Stack     []byte
}

// Error renders the fault as a message suitable for logging
func (f Fault) Error() string {
	return fmt.Sprintf("%s fault: %v", f.Kind, f.Recovered)
}

// Handler is invoked for out-of-memory faults before they are logged
type Handler func(Fault)

var (
	handlerMu sync.RWMutex
	handler   Handler
)

// SetOOMHandler installs a process-wide hook invoked for out-of-memory
// faults before severe logging. Passing nil removes the hook.
func SetOOMHandler(h Handler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	handler = h
}

// Inspect classifies a recovered panic value. Out-of-memory faults are
// routed through the registered handler before returning.
func Inspect(recovered any) Fault {
	f := Fault{
		Kind:      classify(recovered),
		Recovered: recovered,
		Stack:     captureStack(),
	}

	if f.Kind == KindOutOfMemory {
		handlerMu.RLock()
		h := handler
		handlerMu.RUnlock()
		if h != nil {
			h(f)
		}
	}

	return f
}

func classify(recovered any) Kind {
	msg := ""
	switch v := recovered.(type) {
	case runtime.Error:
		msg = v.Error()
		if isOOM(msg) {
			return KindOutOfMemory
		}
		return KindRuntime
	case error:
		msg = v.Error()
	case string:
		msg = v
	default:
		msg = fmt.Sprint(recovered)
	}

	if isOOM(msg) {
		return KindOutOfMemory
	}
	return KindUser
}

func isOOM(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "out of memory") ||
		strings.Contains(lower, "cannot allocate memory")
}

func captureStack() []byte {
	buf := make([]byte, 16*1024)
	n := runtime.Stack(buf, false)
	return buf[:n]
}
