// Command blockclip copies and pastes block trees between documents.
package main

import "github.com/mesh-intelligence/blockclip/internal/cli"

func main() {
	cli.Execute()
}
