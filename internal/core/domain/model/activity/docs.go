// Package activity defines the entries of the activity feed: an append-only
// audit trail of assignment relation changes. Entries are immutable values and
// are ordered only by their action time.
package activity
