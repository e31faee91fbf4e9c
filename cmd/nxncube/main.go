// nxncube - play, record and analyse NxNxN rotating cube sessions.
package main

import (
	"github.com/SeamusWaldron/nxncube/internal/cli"
)

func main() {
	cli.Execute()
}
