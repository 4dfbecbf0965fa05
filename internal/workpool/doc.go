// Package workpool runs independent tasks on a bounded number of goroutines.
//
// A run submits every task, waits for all of them and returns the results in
// task order. The first failing task fails the run; the context passed to the
// remaining tasks is canceled at that point so they can stop early. Results of
// a failed run are never returned.
//
// Run is built on golang.org/x/sync/errgroup with SetLimit, so at most size
// tasks run at once. DefaultSize follows the number of CPUs.
package workpool
