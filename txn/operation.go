package txn

import "fmt"

// State of an operation.
type State int

// Operation states.
const (
	Pending State = iota
	OK
	Err
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case OK:
		return "ok"
	case Err:
		return "err"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result of an operation. Hash is set when State is OK, Err when State is Err.
type Result struct {
	State State
	Hash  string
	Err   error
}

// Operation is a submission whose result may not be known yet.
type Operation struct {
	done chan struct{}
	res  Result
}

// Go runs fn on a new goroutine and returns its operation.
func Go(fn func() (string, error)) *Operation {
	o := &Operation{done: make(chan struct{})}

	go func() {
		hash, err := fn()
		if err != nil {
			o.res = Result{State: Err, Err: err}
		} else {
			o.res = Result{State: OK, Hash: hash}
		}
		close(o.done)
	}()

	return o
}

// Failed returns an operation already resolved with err.
func Failed(err error) *Operation {
	o := &Operation{done: make(chan struct{}), res: Result{State: Err, Err: err}}
	close(o.done)
	return o
}

// Wait blocks until the operation is resolved and returns its result.
func (o *Operation) Wait() Result {
	<-o.done
	return o.res
}

// Result returns the result without blocking, its State is Pending while the operation runs.
func (o *Operation) Result() Result {
	select {
	case <-o.done:
		return o.res
	default:
		return Result{State: Pending}
	}
}
