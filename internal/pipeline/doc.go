// Package pipeline runs the stages of a documentation build in order.
//
// A build moves through a fixed sequence of steps:
//
//	parse_nav -> index -> crawl -> extract -> check_coverage ->
//	download_images -> relink_images -> shift_headings -> assemble
//
// optionally followed by render. Every step reads the output of the steps
// before it from the shared *model.Build and stores its own output there.
// The first failing step stops the build and its error is returned as is.
package pipeline
