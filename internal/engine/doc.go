// Package engine holds the test tree of a suite and the rules for building it.
//
// A tree has one trunk, any number of described branches, and test leaves.
// Construction-time informer records are kept in the tree as info nodes so
// they can be reported at the position they were made.
//
// ## Registration
//
// Registration happens while a suite's build callback runs. Every call is
// checked against the engine's RegistrationState:
//   - Open: branches, leaves and info nodes are appended in declaration order
//   - Closed: every registration fails with ErrRegistrationClosed and the tree
//     is left as it was
//
// The state moves from Open to Closed when a runner first asks to execute the
// engine and never moves back.
//
// ## Names and paths
//
// A leaf's resolved name is the texts of its ancestor branches followed by its
// own text, joined by single spaces. Resolved names are unique per engine.
// ResolvePath returns the child indices leading from the trunk to a leaf; info
// nodes count as children.
//
// ## Outcomes
//
// Test bodies return an error which Classify turns into an Outcome:
//   - nil: Succeeded
//   - Pending(): Pending
//   - Cancel(...): Canceled
//   - Severe(...): Aborted, which stops the suite and the run
//   - anything else, including recovered panics: Failed
package engine
