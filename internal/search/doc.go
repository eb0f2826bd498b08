// Package search finds a route between two grid cells with a layered
// best-first expansion.
//
// Each iteration scores the whole frontier (g = layer index + 1, h = Manhattan
// distance to the target), picks the lowest-f cell as the layer winner, moves
// the entire layer into the visited trace and builds the next layer. The
// winners form the returned path; the visited trace exists for animation.
//
// The grid is never written to. Scores live in a map local to one call, so
// any number of searches may run on the same grid concurrently.
package search
