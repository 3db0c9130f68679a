package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mobile-next/galleryview/cli"
	"github.com/mobile-next/galleryview/commands"
	"github.com/mobile-next/galleryview/sessions"
)

func main() {
	// session store for the server; server start replaces it when
	// custom thresholds or capacity are given
	store, err := sessions.NewStore(sessions.DefaultCapacity, nil, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	commands.SetStore(store)

	// setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// run command in goroutine
	done := make(chan error, 1)
	go func() {
		done <- cli.Execute()
	}()

	// wait for command completion or signal
	select {
	case <-sigChan:
		// close live viewer sessions on signal
		if s := commands.GetStore(); s != nil {
			s.CleanupAll()
		}
		os.Exit(0)
	case err := <-done:
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
