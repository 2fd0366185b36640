// Package batch splits bulk activity imports into fixed-size chunks.
//
// Each chunk is handed to a callback in order, with progress reported after
// every chunk and cancellation checked between chunks. The engine uses it to
// hold a user's write lock for one chunk at a time instead of the whole import.
package batch
