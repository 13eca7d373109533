// Package tui shows a live view of a run using the Bubble Tea framework.
//
// Events reach the program through a ProgramReporter, which buffers them in
// a reporting.BufferedChannel so that a slow or exited terminal never blocks
// the scheduler. The model keeps counters, the set of running tests and a
// short log of recent results, and quits on its own when the run ends.
// Pressing q or ctrl+c requests a cooperative stop of the run.
package tui
