// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/javelin/internal/adapters/classfile"
	_ "go.trai.ch/javelin/internal/adapters/config"
	_ "go.trai.ch/javelin/internal/adapters/fs"
	_ "go.trai.ch/javelin/internal/adapters/javasrc"
	_ "go.trai.ch/javelin/internal/adapters/logger"
	_ "go.trai.ch/javelin/internal/adapters/unitcache"
	_ "go.trai.ch/javelin/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/javelin/internal/app"
)
