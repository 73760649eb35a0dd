package ports

// ShutdownDelegate performs the actual process teardown. The sequencer
// guarantees it is invoked at most once per run.
type ShutdownDelegate interface {
	GracefulShutdown()
}

// ShutdownDelegateFunc adapts a plain function to the delegate interface.
type ShutdownDelegateFunc func()

func (f ShutdownDelegateFunc) GracefulShutdown() {
	f()
}
