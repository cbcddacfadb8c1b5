// Package stack provisions and tears down the Open WebUI stack on a container engine.
//
// The Stack holds no handles to engine resources. Every operation derives
// resource names from the namespace and the config again, so running teardown
// after a crash, or twice in a row, is safe. Running two Stacks with the same
// namespace against one engine at the same time is not.
package stack

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/sarth-shah20/llmstack/internal/config"
	"github.com/sarth-shah20/llmstack/internal/docker"
	"github.com/sarth-shah20/llmstack/internal/health"
	"github.com/sarth-shah20/llmstack/internal/naming"
)

// Engine is the subset of the container engine the stack needs.
// *docker.Manager implements it.
type Engine interface {
	PullImage(ctx context.Context, image string, onProgress func(docker.PullProgress)) error

	CreateNetwork(ctx context.Context, spec docker.NetworkSpec) error
	ListNetworks(ctx context.Context, nameFilter string) ([]docker.NetworkInfo, error)
	RemoveNetwork(ctx context.Context, name string) error

	CreateContainer(ctx context.Context, spec docker.ContainerSpec) (string, error)
	StartContainer(ctx context.Context, nameOrID string) error
	StopContainer(ctx context.Context, nameOrID string) error
	RemoveContainer(ctx context.Context, nameOrID string) error
	ListContainers(ctx context.Context, nameFilters ...string) ([]docker.ContainerInfo, error)
}

// Waiter blocks until the primary service is ready. *health.Gate implements it.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Options configures a Stack.
type Options struct {
	// DataDir is the host directory mounted into Open WebUI.
	DataDir string
	// Gate overrides the default health gate on HealthURL.
	Gate   Waiter
	Logger *log.Logger
}

// Stack manages the networks and containers described by a config.
type Stack struct {
	engine  Engine
	cfg     *config.Config
	ns      naming.Namespace
	dataDir string
	gate    Waiter
	log     *log.Logger
}

// New creates a Stack. cfg is read, never modified.
func New(engine Engine, cfg *config.Config, opts Options) *Stack {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	gate := opts.Gate
	if gate == nil {
		gate = health.NewGate(HealthURL, logger)
	}

	return &Stack{
		engine:  engine,
		cfg:     cfg,
		ns:      naming.New(cfg.Namespace),
		dataDir: opts.DataDir,
		gate:    gate,
		log:     logger,
	}
}

// Up brings the stack up: pull images, remove leftovers from a previous run,
// create networks and containers, then wait for Open WebUI to become healthy.
// If creation or the health gate fails, everything is torn down again before
// the error is returned.
func (s *Stack) Up(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	if s.dataDir == "" {
		return fmt.Errorf("%w: data directory is not set", config.ErrInvalid)
	}

	s.log.Info("pulling container images")
	if err := s.PullImages(ctx); err != nil {
		return err
	}

	// Resources left by a previous session that did not exit cleanly.
	s.log.Info("cleaning up previous containers, if needed")
	if err := s.CleanupInfrastructure(ctx); err != nil {
		return err
	}

	s.log.Info("starting containers")
	if err := s.CreateInfrastructure(ctx); err != nil {
		return s.rollback(ctx, err)
	}

	s.log.Info("waiting for open webui to become healthy", "url", HealthURL)
	if err := s.WaitUntilPrimaryHealthy(ctx); err != nil {
		return s.rollback(ctx, err)
	}

	s.log.Info("stack is up", "url", PrimaryURL)
	return nil
}

// Down removes every container and network of the stack.
func (s *Stack) Down(ctx context.Context) error {
	return s.CleanupInfrastructure(ctx)
}

// WaitUntilPrimaryHealthy blocks on the health gate. It returns an error
// wrapping health.ErrStartupTimeout when the gate gives up.
func (s *Stack) WaitUntilPrimaryHealthy(ctx context.Context) error {
	if err := s.gate.Wait(ctx); err != nil {
		return fmt.Errorf("wait for %s: %w", s.ns.Primary(), err)
	}
	return nil
}

// Status lists the containers of the stack, stopped ones included. Only
// names derived from the config are reported, so a namespace that is a
// prefix of another one does not claim the other's containers.
func (s *Stack) Status(ctx context.Context) ([]docker.ContainerInfo, error) {
	return s.managedContainers(ctx)
}

func (s *Stack) rollback(ctx context.Context, cause error) error {
	s.log.Error("startup failed, removing created resources", "err", cause)

	// Teardown runs to completion even when ctx was cancelled.
	if err := s.CleanupInfrastructure(context.WithoutCancel(ctx)); err != nil {
		return errors.Join(cause, fmt.Errorf("rollback: %w", err))
	}
	return cause
}
