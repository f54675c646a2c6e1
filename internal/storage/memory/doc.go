// Package memory provides the in-memory store for one tracking session.
//
// A Store maps screen identifiers to their tracking records: collected
// touch samples, navigation provenance and the background snapshot. It
// also tracks which screen is currently active.
//
// Thread Safety:
//
// Every operation takes the store's single mutex. Touch delivery holds it
// only for one append; navigation bookkeeping is O(1). Records handed out
// by the store are deep copies and may be used without further locking.
package memory
