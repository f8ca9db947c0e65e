// Package app exposes the screens through a name-based facade so scenarios
// and the CLI can drive them without knowing their state or action types.
package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/backlash/internal/app/filterconstructor"
	"github.com/roach88/backlash/internal/app/imageselection"
	"github.com/roach88/backlash/internal/engine"
	"github.com/roach88/backlash/internal/ir"
	"github.com/roach88/backlash/internal/services"
)

// Runner drives one engine by action name.
type Runner interface {
	// App returns the registry name of the screen.
	App() string
	Actions() engine.ActionSet

	// Dispatch decodes args for name and dispatches the action. Decoding
	// failures are returned as errors instead of panicking. The bool is
	// Engine.Dispatch's result.
	Dispatch(name string, args ir.IRArray) (bool, error)

	// Snapshot renders the current state.
	Snapshot() ir.IRObject
	Subscribe(fn func(ir.IRObject)) (unsubscribe func())

	Wait()
	Close()
	Shutdown(ctx context.Context) error
	Session() string
	Seq() int64
}

// Config is what every screen needs to start.
type Config struct {
	StaticImage int64
	Picker      services.ImagePicker
	Options     []engine.Option
}

// Factory starts a screen.
type Factory func(cfg Config) Runner

type entry struct {
	actions engine.ActionSet
	start   Factory
}

var registry = map[string]entry{
	imageselection.Name: {
		actions: imageselection.Actions,
		start: func(cfg Config) Runner {
			eng := imageselection.New(cfg.StaticImage, cfg.Picker, cfg.Options...)
			return newRunner(imageselection.Name, imageselection.Actions, eng)
		},
	},
	filterconstructor.Name: {
		actions: filterconstructor.Actions,
		start: func(cfg Config) Runner {
			eng := filterconstructor.New(cfg.StaticImage, filterconstructor.FromPicker(cfg.Picker), cfg.Options...)
			return newRunner(filterconstructor.Name, filterconstructor.Actions, eng)
		},
	},
}

// Names lists the registered screens, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the factory registered as name.
func Lookup(name string) (Factory, error) {
	e, err := find(name)
	if err != nil {
		return nil, err
	}
	return e.start, nil
}

// ActionsFor returns the action set of name without starting it.
func ActionsFor(name string) (engine.ActionSet, error) {
	e, err := find(name)
	if err != nil {
		return engine.ActionSet{}, err
	}
	return e.actions, nil
}

func find(name string) (entry, error) {
	e, ok := registry[name]
	if !ok {
		return entry{}, fmt.Errorf("unknown app %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return e, nil
}

// Start looks name up and starts it with cfg.
func Start(name string, cfg Config) (Runner, error) {
	f, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if cfg.Picker == nil {
		cfg.Picker = services.NewScriptedPicker()
	}
	return f(cfg), nil
}
