// Package console plays the game over plain line-oriented streams.
//
// Printer writes every grid with its '*' border to an io.Writer, and Reader
// reads one menu command per line. Together they let a game run against
// stdin/stdout or against in-memory buffers in tests.
package console
