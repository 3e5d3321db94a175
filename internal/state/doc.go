// Package state keeps the local mirror of server-side collections consistent
// with outstanding network operations.
//
// # Overview
//
// jobdeck shows lists of jobs, users and applications fetched from the job
// board API and lets recruiters and admins change them. Every change is
// applied locally first so the UI reacts instantly, then confirmed or
// reverted once the server answers. This package owns that logic and knows
// nothing about HTTP: the server side of a change is an injected function.
//
// # Components
//
//	Collection[T]     ordered entities keyed by id (insert-front, upsert, remove)
//	Tracker           idle/pending/succeeded/failed + last error per operation key
//	Synchronizer[T]   optimistic apply -> remote call -> commit or exact rollback
//	Health            outcome of the background list refreshes
//
// # Mutation Lifecycle
//
//	Mutate(opKey, id, change, remote)
//	  │
//	  ├─ opKey pending?            → OPERATION_IN_PROGRESS, store untouched
//	  ├─ capture snapshot of id    (value, index, present)
//	  ├─ apply change locally      (create / update / delete)
//	  ├─ Tracker.Begin(opKey)
//	  │        ── lock released, remote(ctx) runs ──
//	  ├─ success: overwrite id with the server value, Tracker.Succeed
//	  └─ failure: restore snapshot at its original index, Tracker.Fail,
//	             return REMOTE_FAILED wrapping the remote error
//
// Callers never roll back themselves; by the time Mutate returns the store is
// reconciled.
//
// # Concurrency Model
//
// Each Synchronizer guards its Collection and Tracker with a single mutex.
// The lock is held for the synchronous transitions before and after the
// remote call, never across it, so readers never observe a torn state.
//
// Only identical operation keys exclude each other. Two different keys on the
// same entity (say, toggling a job's status while deleting it) may overlap;
// whichever response arrives last decides the final value, except that an
// update never resurrects an entity a delete has removed.
//
// # Refreshes
//
// Reset installs a freshly fetched list without undoing work in flight:
// tentative creates stay at the front, tentative deletes stay hidden and
// entities being updated keep their optimistic value until their own
// mutation resolves.
package state
