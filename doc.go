// Package eventide implements a small event sourcing kernel. It couples an
// aggregate replay engine, an append-only per-aggregate event log with
// optimistic concurrency, a repository bridging the two, and in-process
// command and event routing into a single library that can be embedded into
// services.
//
// Typical usage looks like:
//   - Define Appliers that fold events into your aggregate state
//   - Build aggregates with NewAggregate and raise events with Raise
//   - Open an EventStore (memory, Redis or bbolt) with a Publisher
//   - Load and save aggregates through a StoreRepository
//   - Register command handlers on a Dispatcher and dispatch commands
//   - Subscribe projections to the Publisher
//
// The inventory and views packages contain a small domain that exercises the
// API end to end.
package eventide
