// Package runner executes suites and turns their outcomes into the ordered
// event log of a run.
//
// ## Execution modes
//
//   - Sequential: leaves run strictly in declaration order. An asynchronous
//     body is awaited before the next leaf starts.
//   - Parallel: leaves are dispatched in declaration order onto a bounded
//     worker pool. TestStarting events keep declaration order; terminal
//     events arrive in completion order. A suite completes only after every
//     dispatched leaf finished.
//
// Suites created WithSequential run sequentially in parallel runs too.
//
// ## Stopping
//
// Stop requests are cooperative. The flag is polled between leaves and
// before every dispatch; running tests finish normally. Cancelling the run
// context counts as a stop request, and tests waiting on it end Canceled.
// A run is reported stopped only when its context was cancelled or a stop
// request left selected tests undispatched.
//
// ## Time limits
//
// A test that exceeds its time limit fails with a TimeoutError, but its body
// is not interrupted. The suite waits for every body to return before it
// completes. Informer calls a body makes after its test ended are reported
// at top level until the suite ends and are dropped afterwards.
//
// ## Failures
//
// Ordinary failures, pending and canceled tests do not affect the rest of the
// suite. A severe error ends its suite with SuiteAborted and the run with
// RunAborted; no further leaves are dispatched. A suite that failed to
// construct, or whose before-all or after-all hook failed, is reported as
// aborted and the run continues with the next suite.
package runner
