// Package main provides the entry point for the docepub CLI.
//
// docepub crawls a documentation site through its navigation menu, joins the
// pages in menu order and renders them into a single book with pandoc.
//
// Usage:
//
//	docepub build https://docs.spring.io/spring-boot/reference/
//	docepub build --project spring-data-jpa --version 3.4.x
//
// See --help for all available options.
package main

func main() {
	Execute()
}
