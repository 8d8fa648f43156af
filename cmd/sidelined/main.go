package main

import (
	"context"

	"github.com/fortuna/sidelined/cmd/sidelined/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
