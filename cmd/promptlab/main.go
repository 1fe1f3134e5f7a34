// cmd/promptlab/main.go
package main

import (
	"github.com/promptlab/promptlab/internal/commands"
)

// main starts the promptlab CLI by delegating to the cobra root command
// defined in the commands package.
func main() {
	commands.Execute()
}
