// Package profile provides low-overhead timing of named code sections.
//
// A Profiler is constructed explicitly and injected where needed; there is
// no process-wide instance. Disabled or nil profilers cost a single atomic
// load per call.
package profile
