package stack

import (
	"context"
	"errors"
	"fmt"

	"github.com/sarth-shah20/llmstack/internal/docker"
)

// CleanupInfrastructure removes the containers, then the networks. Networks
// are left alone when a container could not be removed, since the engine
// refuses to remove a network with live endpoints.
func (s *Stack) CleanupInfrastructure(ctx context.Context) error {
	s.log.Debug("deleting containers")
	if err := s.DeleteContainers(ctx); err != nil {
		return err
	}

	s.log.Debug("deleting networks")
	return s.DeleteNetworks(ctx)
}

// DeleteContainers stops and force-removes every existing container whose name
// is derived from the config. A failed stop is ignored (the container may not
// be running). A failed removal does not stop the batch: every container is
// attempted and the failures are returned together.
func (s *Stack) DeleteContainers(ctx context.Context) error {
	containers, err := s.managedContainers(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, c := range containers {
		if err := s.engine.StopContainer(ctx, c.Name); err != nil {
			s.log.Debug("stop failed, removing anyway", "container", c.Name, "err", err)
		}

		if err := s.engine.RemoveContainer(ctx, c.Name); err != nil {
			if errors.Is(err, docker.ErrNotFound) {
				continue
			}
			s.log.Error("failed to remove container", "container", c.Name, "err", err)
			errs = append(errs, fmt.Errorf("remove container %s: %w", c.Name, err))
			continue
		}
		s.log.Info("removed container", "container", c.Name)
	}

	return errors.Join(errs...)
}

// DeleteNetworks removes the frontend and backend networks of the namespace.
// Only exact names are removed, so a namespace that is a prefix of another
// one leaves the other's networks alone. The first failure aborts the
// remaining removals.
func (s *Stack) DeleteNetworks(ctx context.Context) error {
	networks, err := s.engine.ListNetworks(ctx, s.ns.Prefix())
	if err != nil {
		return fmt.Errorf("list networks: %w", err)
	}

	wanted := make(map[string]bool, 2)
	for _, name := range s.ns.Networks() {
		wanted[name] = true
	}

	for _, n := range networks {
		// The engine's name filter matches substrings.
		if !wanted[n.Name] {
			continue
		}

		if err := s.engine.RemoveNetwork(ctx, n.Name); err != nil {
			if errors.Is(err, docker.ErrNotFound) {
				continue
			}
			return fmt.Errorf("remove network %s: %w", n.Name, err)
		}
		s.log.Info("removed network", "network", n.Name)
	}

	return nil
}

// managedContainers lists the existing containers whose names are derived
// from the config, stopped ones included.
func (s *Stack) managedContainers(ctx context.Context) ([]docker.ContainerInfo, error) {
	extra := make([]string, 0, len(s.cfg.ExtraBackendServices))
	for _, svc := range s.cfg.ExtraBackendServices {
		extra = append(extra, svc.Name)
	}
	names := s.ns.Containers(extra)

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	containers, err := s.engine.ListContainers(ctx, names...)
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	// The engine's name filter matches substrings.
	owned := containers[:0]
	for _, c := range containers {
		if wanted[c.Name] {
			owned = append(owned, c)
		}
	}
	return owned, nil
}
