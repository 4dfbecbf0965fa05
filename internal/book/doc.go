// Package book assembles content fragments into a single document.
//
// The book is an HTML document with the build title in its head. Fragments
// are appended to the body in navigation pre-order. A fragment node can only
// have one parent, so a reference that appears more than once in the
// navigation gets a deep copy for each appearance after the first.
package book
