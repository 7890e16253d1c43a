// Package pure memoizes pure functions of fixed arity.
//
// Tableize is not just a utility to add memoization.
// Tableize is a tool that forces the developer to ask:
//
//	→ "Is this function really pure?"
//	→ "Can this computation be treated as a lazy table?"
//
// The Tableize family keys each call by the canonical cache key of its argument tuple
// (see package cachekey), so slices, maps and structs are valid arguments as long as
// they contain no funcs. Types implementing cachekey.Keyer choose their own key.
//
// Tables are unbounded and safe for concurrent use. Concurrent calls with equal
// arguments run the function once.
//
// WARNING: Do not use Tableize on impure functions (e.g., those depending on time, I/O, etc).
// Arguments that cannot be keyed panic, since the tableized signatures have no error result.
package pure
