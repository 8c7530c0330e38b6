// Package main starts the touchrelay pointer relay.
package main

import "flag"

// main is the entrypoint for the relay.
func main() {
	opts := runOptions{}
	flag.BoolVar(&opts.debug, "debug", false, "Enable verbose debug logging")
	flag.BoolVar(&opts.hub, "hub", false, "Also serve an embedded coordinate hub on HUB_ADDR")
	flag.BoolVar(&opts.detached, "detached", false, "Run without a browser against an empty page")
	flag.Parse()

	if err := run(opts); err != nil {
		logFatal(err)
	}
}
