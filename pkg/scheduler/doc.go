// Package scheduler implements a fixed-size worker pool with futures.
//
// The migration pipeline mutates NetBox strictly sequentially, but before a
// stage starts it needs several existing-resource name sets (devices, IPs,
// prefixes, interfaces) that are independent reads. Those prefetches are
// submitted here and awaited through their futures.
//
// Work items receive a context derived from the scheduler's root context;
// Future.Stop cancels an individual item, Close cancels everything and
// waits for in-flight work to finish. Panics inside a work function are
// recovered and surfaced as errors on the future.
package scheduler
