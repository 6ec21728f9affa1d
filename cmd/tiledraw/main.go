// Command tiledraw drives the tiled rendering engine from a terminal,
// standing in for the GUI shell the core specification leaves external.
package main

import "github.com/MeKo-Tech/tiledraw/internal/cmd"

func main() {
	cmd.Execute()
}
