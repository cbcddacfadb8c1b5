package docker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/docker/go-connections/nat"
)

// Manager handles all interactions with the Docker Daemon
type Manager struct {
	cli *client.Client
	log *log.Logger
}

// NewManager creates a new Docker client connected to the local daemon
func NewManager(logger *log.Logger) (*Manager, error) {
	// FromEnv looks for standard env vars like DOCKER_HOST,
	// or defaults to the unix socket /var/run/docker.sock
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return NewManagerWithClient(cli, logger), nil
}

// NewManagerWithClient wraps an existing client, e.g. one pointed at a test server.
func NewManagerWithClient(cli *client.Client, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{cli: cli, log: logger.WithPrefix("docker")}
}

// Ping checks that the daemon is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	if _, err := m.cli.Ping(ctx); err != nil {
		return newEngineError("ping", "daemon", "", err)
	}
	return nil
}

// Close releases the underlying client.
func (m *Manager) Close() error {
	return m.cli.Close()
}

// PullImage requests the daemon to download imageName and consumes the
// progress stream to completion. A record carrying an error, or a stream that
// cannot be decoded, fails the pull.
func (m *Manager) PullImage(ctx context.Context, imageName string, onProgress func(PullProgress)) error {
	m.log.Debug("pulling image", "image", imageName)

	reader, err := m.cli.ImagePull(ctx, imageName, types.ImagePullOptions{})
	if err != nil {
		return newEngineError("pull", "image", imageName, err)
	}
	defer reader.Close()

	// We must read the output until EOF, otherwise the pull might be cancelled
	// or the connection closed prematurely.
	dec := json.NewDecoder(reader)
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return newEngineError("pull", "image", imageName, fmt.Errorf("error reading pull output: %w", err))
		}

		if msg.Error != nil {
			return newEngineError("pull", "image", imageName, fmt.Errorf("%w: %s", ErrPullFailed, msg.Error.Message))
		}

		if onProgress == nil {
			continue
		}
		p := PullProgress{Image: imageName, ID: msg.ID, Status: msg.Status}
		if msg.Progress != nil {
			p.Current, p.Total = msg.Progress.Current, msg.Progress.Total
		}
		onProgress(p)
	}
}

// CreateNetwork creates a network. It fails with ErrConflict semantics if the
// name is already taken; callers are expected to clean up stale state first.
func (m *Manager) CreateNetwork(ctx context.Context, spec NetworkSpec) error {
	m.log.Debug("creating network", "network", spec.Name, "driver", spec.Driver)

	_, err := m.cli.NetworkCreate(ctx, spec.Name, types.NetworkCreate{
		Driver:  spec.Driver,
		Options: spec.Options,
		Labels:  spec.Labels,
	})
	if err != nil {
		return newEngineError("create", "network", spec.Name, err)
	}
	return nil
}

// ListNetworks returns the networks whose name matches the engine-side name
// filter. The engine matches substrings, so callers must check names exactly.
func (m *Manager) ListNetworks(ctx context.Context, nameFilter string) ([]NetworkInfo, error) {
	filterArgs := filters.NewArgs()
	if nameFilter != "" {
		filterArgs.Add("name", nameFilter)
	}

	networks, err := m.cli.NetworkList(ctx, types.NetworkListOptions{Filters: filterArgs})
	if err != nil {
		return nil, newEngineError("list", "network", "", err)
	}

	result := make([]NetworkInfo, 0, len(networks))
	for _, n := range networks {
		result = append(result, NetworkInfo{ID: n.ID, Name: n.Name, Driver: n.Driver})
	}
	return result, nil
}

// RemoveNetwork deletes a network by name or ID.
func (m *Manager) RemoveNetwork(ctx context.Context, name string) error {
	if err := m.cli.NetworkRemove(ctx, name); err != nil {
		return newEngineError("remove", "network", name, err)
	}
	return nil
}

// CreateContainer creates a container without starting it and returns its ID.
func (m *Manager) CreateContainer(ctx context.Context, spec ContainerSpec) (string, error) {
	// 1. Configure ports. Only ports with a HostPort get a host binding.
	exposedPorts := nat.PortSet{}
	portBindings := nat.PortMap{}
	for _, p := range spec.Ports {
		proto, port := nat.SplitProtoPort(p.Port)
		natPort, err := nat.NewPort(proto, port)
		if err != nil {
			return "", fmt.Errorf("invalid port %s for %s: %w", p.Port, spec.Name, err)
		}
		exposedPorts[natPort] = struct{}{}

		if p.HostPort != "" {
			portBindings[natPort] = append(portBindings[natPort], nat.PortBinding{
				HostIP:   p.HostIP,
				HostPort: p.HostPort,
			})
		}
	}

	// 2. Define the Container Config (Inside)
	config := &container.Config{
		Image:        spec.Image,
		Cmd:          spec.Command,
		Env:          spec.Env,
		User:         spec.User,
		WorkingDir:   spec.WorkingDir,
		ExposedPorts: exposedPorts,
		Labels:       spec.Labels,
	}

	// 3. Define the Host Config (Outside)
	hostConfig := &container.HostConfig{
		PortBindings: portBindings,
		Binds:        spec.Binds,
	}

	// 4. Define Network Config. Older engines accept a single endpoint at
	// create time, the remaining networks are connected afterwards.
	var networkConfig *network.NetworkingConfig
	if len(spec.Networks) > 0 {
		hostConfig.NetworkMode = container.NetworkMode(spec.Networks[0])
		networkConfig = &network.NetworkingConfig{
			EndpointsConfig: map[string]*network.EndpointSettings{
				spec.Networks[0]: {},
			},
		}
	}

	m.log.Debug("creating container", "container", spec.Name, "image", spec.Image)
	resp, err := m.cli.ContainerCreate(ctx, config, hostConfig, networkConfig, nil, spec.Name)
	if err != nil {
		return "", newEngineError("create", "container", spec.Name, err)
	}

	if len(spec.Networks) > 1 {
		for _, n := range spec.Networks[1:] {
			if err := m.cli.NetworkConnect(ctx, n, resp.ID, &network.EndpointSettings{}); err != nil {
				return resp.ID, newEngineError("connect", "container", spec.Name, fmt.Errorf("network %s: %w", n, err))
			}
		}
	}

	return resp.ID, nil
}

// StartContainer starts a created container.
func (m *Manager) StartContainer(ctx context.Context, nameOrID string) error {
	if err := m.cli.ContainerStart(ctx, nameOrID, container.StartOptions{}); err != nil {
		return newEngineError("start", "container", nameOrID, err)
	}
	return nil
}

// StopContainer stops a container using the engine's default grace period.
func (m *Manager) StopContainer(ctx context.Context, nameOrID string) error {
	if err := m.cli.ContainerStop(ctx, nameOrID, container.StopOptions{}); err != nil {
		return newEngineError("stop", "container", nameOrID, err)
	}
	return nil
}

// RemoveContainer force-removes a container, keeping its volumes.
func (m *Manager) RemoveContainer(ctx context.Context, nameOrID string) error {
	if err := m.cli.ContainerRemove(ctx, nameOrID, container.RemoveOptions{
		RemoveVolumes: false, // Keep the data!
		Force:         true,
	}); err != nil {
		return newEngineError("remove", "container", nameOrID, err)
	}
	return nil
}

// ListContainers returns all containers, stopped ones included, whose name
// matches any of the engine-side name filters.
func (m *Manager) ListContainers(ctx context.Context, nameFilters ...string) ([]ContainerInfo, error) {
	filterArgs := filters.NewArgs()
	for _, name := range nameFilters {
		filterArgs.Add("name", name)
	}

	containers, err := m.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, newEngineError("list", "container", "", err)
	}

	result := make([]ContainerInfo, 0, len(containers))
	for _, c := range containers {
		info := ContainerInfo{
			ID:      c.ID,
			Image:   c.Image,
			State:   c.State,
			Status:  c.Status,
			Created: time.Unix(c.Created, 0),
		}
		// c.Names[0] is usually "/local_llm_tika", strip the slash
		if len(c.Names) > 0 {
			info.Name = strings.TrimPrefix(c.Names[0], "/")
		}
		for _, p := range c.Ports {
			if p.PublicPort != 0 {
				info.Ports = append(info.Ports, fmt.Sprintf("%d->%d/%s", p.PublicPort, p.PrivatePort, p.Type))
			} else {
				info.Ports = append(info.Ports, fmt.Sprintf("%d/%s", p.PrivatePort, p.Type))
			}
		}
		result = append(result, info)
	}
	return result, nil
}
