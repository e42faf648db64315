// ldrawtool is a CLI utility for importing LDraw models: it inspects the
// parts library, composes models into node trees and exports them as glTF
// scenes and WebP previews.
package main

import (
	"fmt"
	"os"

	"github.com/Faultbox/brickyard/internal/config"
	"github.com/Faultbox/brickyard/internal/logger"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		err = cmdInfo(cfg, args)
	case "list", "ls":
		err = cmdList(cfg, args)
	case "search", "find":
		err = cmdSearch(cfg, args)
	case "tree":
		err = cmdTree(cfg, args)
	case "export", "x":
		err = cmdExport(cfg, args)
	case "preview":
		err = cmdPreview(cfg, args)
	case "part":
		err = cmdPart(cfg, args)
	case "colors", "colours":
		err = cmdColors(cfg, args)
	case "models":
		err = cmdModels(cfg, args)
	case "batch":
		err = cmdBatch(cfg, args)
	case "init-config":
		err = cmdInitConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ldrawtool - LDraw model importer

Usage:
  ldrawtool [global options] <command> [options]

Global options:
  -config <file>    Config file (default: ./config.yaml, then user config dir)
  -library <path>   LDraw library directory or complete.zip
  -cache <dir>      Part mesh cache directory
  -nocache          Disable the part mesh cache
  -workers <n>      Batch import workers
  -scale <f>        Uniform model scale
  -debug            Enable debug logging

Commands:
  info [-files] <model>            Import a model and show statistics
  list [pattern]                   List library files (optional glob pattern)
  search <pattern>                 Search library files by name
  tree <model>                     Print the imported node tree
  export <model> [output.glb]      Export a model as a glTF binary scene
  preview <model> [output.webp]    Render a still WebP preview
  part <name>                      Show the welded mesh of one part
  models [file|dir ...]            List the models of the models path and files
  colors                           List the colour table
  batch [model|dir ...]            Import many models concurrently
  init-config [path]               Write the effective config file

A model is a name resolved against the library and the models path, or a
path to an .ldr, .mpd or .dat file.

Examples:
  ldrawtool -library ~/ldraw info 3001.dat
  ldrawtool list "3*.dat"
  ldrawtool export car.mpd car.glb
  ldrawtool -workers 8 batch -out ./glb -preview ./models`)
}
