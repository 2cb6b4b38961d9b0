// Package logs reads the daemon log file for `audittray logs`.
//
// Last returns the final lines of a file with bounded memory, ReadFrom
// continues at a byte offset, and Follow streams new lines as they are
// written until the context ends. Only complete lines are returned so a
// writer caught mid-line is picked up on the next read.
package logs
