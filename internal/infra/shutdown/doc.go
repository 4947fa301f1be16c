// Package shutdown coordinates graceful process termination.
//
// A Handler waits for SIGINT/SIGTERM, an explicit Trigger (for example a
// listener that stopped serving) or context cancellation, then runs the
// registered hooks in reverse registration order under a deadline.
package shutdown
