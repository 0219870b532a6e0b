// Command surfacegate is the CLI for the surfacegate gateway: it runs the
// daemon, submits and polls rendering jobs, promotes completed jobs into the
// product catalog, and inspects the catalog.
package main
