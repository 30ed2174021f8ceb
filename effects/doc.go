// Package effects runs business logic written as effect programs.
//
// A program never performs I/O. It describes each infrastructure operation
// it needs as an immutable Description value (see the database, cache,
// messaging, storage, transport and auth packages), suspends, and is resumed
// with the Outcome of executing that description. Failures come back the same
// way as successes: deciding whether to retry, recover or give up is the
// program's job, not the runner's.
//
// The pieces:
//
//   - Plan and NewProgram build programs as continuations. Request, Expect,
//     Then and Retry cover the common shapes.
//   - Registry builds a Composite that routes each description by its Tag to
//     the one interpreter registered for it. An unrouted description is an
//     Unroutable failure, never a panic.
//   - Runner drives one program to completion against any Executor. Audit and
//     Instrument decorate an Executor with zap logging and Prometheus metrics.
//   - Pool runs many independent programs on a fixed set of workers, keeping
//     programs that share a key in submission order.
//
// Example:
//
//	composite := effects.NewRegistry().
//	    Register(database.NewInterpreter(repo), cache.NewInterpreter(store)).
//	    MustBuild()
//	runner := effects.NewRunner(composite, effects.WithLogger(logger))
//
//	res, err := effects.RunProgram(ctx, runner, programs.CacheAside("42"))
//
// Tests swap the composite for an effecttest.Recorder and script outcomes per
// tag; the program under test cannot tell the difference.
package effects
