// Package main starts the server after configuring it from supplied or standard arguments
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacobpatterson1549/swipe-words/server"
	"github.com/jacobpatterson1549/swipe-words/server/log"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// main configures and runs the server.
func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "loading .env file: %v\n", err)
		os.Exit(1)
	}
	m := newMainFlags(os.Args, os.LookupEnv)
	log, err := m.newLogger(os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %v\n", err)
		os.Exit(1)
	}
	if err := run(ctx, m, log); err != nil {
		log.Fatal().Err(err).Msg("running server")
	}
	log.Printf("server run stopped successfully")
}

// run creates the server and its word services and runs them until the server stops.
func run(ctx context.Context, m mainFlags, log *log.Zerolog) error {
	st, err := m.createStore(ctx)
	if err != nil {
		return fmt.Errorf("setting up database: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("closing database: %v", err)
		}
	}()
	c, err := m.createComponents(log, st)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer func() {
		if err := c.cache.Close(); err != nil {
			log.Printf("closing word cache: %v", err)
		}
	}()
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.lexicon.Run(ctx)
	})
	g.Go(func() error {
		return c.cache.Run(ctx)
	})
	g.Go(func() error {
		defer cancelFunc()
		return runServer(ctx, c.server, log)
	})
	return g.Wait()
}

// runServer runs the server until it is interrupted, terminated, or the context is done.
func runServer(ctx context.Context, server *server.Server, log *log.Zerolog) error {
	done := make(chan os.Signal, 2)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(done)
	errC := server.Run(ctx)
	var runErr error
	select { // BLOCKING
	case err := <-errC:
		switch {
		case errors.Is(err, http.ErrServerClosed):
			log.Printf("server shutdown triggered")
		default:
			runErr = fmt.Errorf("server stopped unexpectedly: %w", err)
		}
	case signal := <-done:
		log.Printf("handled signal: %v", signal)
	case <-ctx.Done():
		log.Printf("stopping server: %v", context.Cause(ctx))
	}
	if err := server.Stop(context.Background()); err != nil {
		return fmt.Errorf("stopping server: %v", err)
	}
	return runErr
}
