package main

import (
	"flag"
	"fmt"
	"os"

	"lifewrapped/internal/di"
	"lifewrapped/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the yaml config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "log debug output to the console")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "lifewrapped: %v\n", err)
		os.Exit(1)
	}
}
