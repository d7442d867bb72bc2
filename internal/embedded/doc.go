// Package embedded is the in-process index engine started for the MEMORY
// backend.
//
// Version 2 keeps every index in memory. Version 5 stores indexes under a
// data directory guarded by a cross-process file lock, so a second process
// pointed at the same directory fails to start instead of corrupting it.
// Both flavours serve a small document and search API over HTTP.
package embedded
