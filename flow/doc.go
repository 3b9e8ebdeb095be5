// Package flow implements the tool loop that drives a model until it answers
// without requesting a tool.
//
// The loop owns the conversation for the duration of a run and lends it to a
// tool.Handler, which appends tool results. It moves through the states
// AWAITING_MODEL, INSPECTING_RESPONSE, INVOKING_TOOL and DONE; OnTransition
// exposes them for tests and metrics.
package flow
