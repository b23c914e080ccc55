// Command sneakerdb administers a sneaker catalog database: schema
// setup, lookups, full-text search, index maintenance, snapshots, and
// catalog dumps.
package main

func main() {
	Execute()
}
