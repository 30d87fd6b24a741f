// Package runner drives one remote run on the hosted assistant to a terminal
// state and returns the assistant's reply.
//
// Flow:
//
//	create run -> poll (queued, in_progress) -> [requires_action: run tools, submit outputs] -> completed
//
// failed, cancelled, expired and incomplete end the run with a
// *completion.RunExecutionError. The poll loop is bounded by MaxPolls and by
// the caller's context.
package runner
