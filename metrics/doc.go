// Package metrics provides optional Prometheus instrumentation for
// [forgecli.dev/argspec/parse] and [forgecli.dev/argspec/validate]. Neither
// core package imports Prometheus directly; they accept the narrow
// [Recorder] interface instead, satisfied by [Collector].
package metrics
