package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/zeusync/scenekit/internal/game"
)

// Controller is the game surface the console drives.
type Controller interface {
	StartGame(ctx context.Context) error
	LoadLevel(ctx context.Context, name string) error
	StartLoop() error
	StopLoop() error
	ToggleControl(ctx context.Context) (bool, error)
	Status(ctx context.Context) (game.Status, error)
}

type command struct {
	name  string
	usage string
	args  int
	run   func(ctx context.Context, c Controller, args []string) (string, error)
}

var commands = []command{
	{name: "help", usage: "help - list commands"},
	{name: "newgame", usage: "newgame - preload assets and start a fresh session", run: func(ctx context.Context, c Controller, _ []string) (string, error) {
		return "game started", c.StartGame(ctx)
	}},
	{name: "level", usage: "level <name> - replace the current level", args: 1, run: func(ctx context.Context, c Controller, args []string) (string, error) {
		return "level " + args[0] + " loaded", c.LoadLevel(ctx, args[0])
	}},
	{name: "start", usage: "start - run the render loop", run: func(_ context.Context, c Controller, _ []string) (string, error) {
		return "loop started", c.StartLoop()
	}},
	{name: "stop", usage: "stop - halt the render loop", run: func(_ context.Context, c Controller, _ []string) (string, error) {
		return "loop stopped", c.StopLoop()
	}},
	{name: "camera", usage: "camera - toggle control capture", run: func(ctx context.Context, c Controller, _ []string) (string, error) {
		enabled, err := c.ToggleControl(ctx)
		if enabled {
			return "controls captured", err
		}
		return "controls released", err
	}},
	{name: "status", usage: "status - describe the session", run: func(ctx context.Context, c Controller, _ []string) (string, error) {
		st, err := c.Status(ctx)
		return st.String(), err
	}},
}

// Console parses command lines and runs them against a Controller.
type Console struct {
	controller Controller
}

func NewConsole(controller Controller) *Console {
	return &Console{controller: controller}
}

// Execute runs one command line and returns its output.
func (c *Console) Execute(ctx context.Context, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: empty line", ErrUnknownCommand)
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		if len(args) < cmd.args {
			return "", fmt.Errorf("%w: usage: %s", ErrMissingArgument, cmd.usage)
		}
		if cmd.run == nil {
			return help(), nil
		}
		out, err := cmd.run(ctx, c.controller, args)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		return out, nil
	}
	return "", fmt.Errorf("%w: %q (try help)", ErrUnknownCommand, name)
}

func help() string {
	lines := make([]string, 0, len(commands))
	for _, cmd := range commands {
		lines = append(lines, cmd.usage)
	}
	return strings.Join(lines, "\n")
}
