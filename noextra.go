//go:build !extra

package main

const audioSupport = "disabled (rebuild with -tags extra for listen, --play and the google voice)"
