// hydra is a programmable HTTP test server.
package main

import "github.com/getmockd/hydra/pkg/cli"

func main() {
	cli.Execute()
}
