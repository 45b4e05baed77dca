// Package todo holds the task model and the in-memory task list.
//
// A task is one of three kinds sharing a description and a completion flag:
//
//	[T][ ] read book
//	[D][X] return book (by: 2019-10-15 18:00)
//	[E][ ] project meeting (at: 2019-10-16 14:00)
//
// # Task Kinds
//
//   - Todo: no timestamp
//   - Deadline: due timestamp, entered as "/by dd/MM/yyyy HH:mm"
//   - Event: occurrence timestamp, entered as "/at dd/MM/yyyy HH:mm"
//
// Timestamps carry no time zone. They are normalized to minute precision and
// stored as wall-clock values in UTC so that formatting and parsing round-trip.
//
// # Indexing
//
// The List is ordered by insertion. All List methods take zero-based indices;
// the one-based numbers users type are converted by the command parser, which
// also performs the bounds checks. Calling Get, Remove or MarkDoneAt with an
// out-of-range index panics.
package todo
