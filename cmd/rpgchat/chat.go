package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/petasbytes/rpg-agent/internal/config"
)

const (
	userPrompt  = "\u001b[94mYou\u001b[0m: "
	replyPrefix = "\u001b[93mAI\u001b[0m: "
)

func runChat(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	// Set up graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		select {
		case <-sigch:
			fmt.Fprintln(out, "\nExiting...")
			cancel()
		case <-ctx.Done():
		}
	}()

	s, err := openSession(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer s.cleanup()

	fmt.Fprintln(out, "Role-play chat (/help for commands, Ctrl-C to quit)")
	return newREPL(s.store, out).loop(ctx, in)
}

// loop reads lines until EOF, /quit or cancellation.
func (r *repl) loop(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inputCh := make(chan string)
	go func() {
		defer close(inputCh)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case inputCh <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(r.out, userPrompt)
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-inputCh:
			if !ok {
				return nil
			}
			if r.handle(ctx, line) {
				return nil
			}
		}
	}
}
