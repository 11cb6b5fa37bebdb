// Package dups finds sets of byte-identical regular files.
//
// It walks directory trees using fastwalk, classifies every regular file by
// its declared size and then refines each size class with two or more
// members by reading all members in lockstep, one fixed-size window at a
// time, and splitting the class whenever the windows disagree.
//
// No file is hashed or buffered whole: a group is resolved as soon as its
// members are proven identical to the end of file, or discarded as soon as
// a single member remains.
package dups
