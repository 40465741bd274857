package main

import "github.com/ritharam/bot-performance-analyzer/internal/app"

func main() {
	app.Main()
}
