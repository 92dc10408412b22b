package distcache

// Pending is the result of an asynchronous cache operation.
type Pending[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func run[T any](fn func() (T, error)) *Pending[T] {
	p := &Pending[T]{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.value, p.err = fn()
	}()
	return p
}

// Done is closed once the operation has completed.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the operation completes and returns its outcome.
func (p *Pending[T]) Wait() (T, error) {
	<-p.done
	return p.value, p.err
}

// Err blocks until the operation completes and returns only its error.
func (p *Pending[T]) Err() error {
	_, err := p.Wait()
	return err
}
