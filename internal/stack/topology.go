package stack

import (
	"context"
	"fmt"

	"github.com/sarth-shah20/llmstack/internal/docker"
)

const (
	// PrimaryImage is Open WebUI, the chat front-end.
	PrimaryImage = "ghcr.io/open-webui/open-webui"
	// AuxiliaryImage is Apache Tika, used by Open WebUI for document extraction.
	AuxiliaryImage = "docker.io/apache/tika"

	PrimaryPort     = "8080/tcp"
	PrimaryHostPort = "11690"
	PrimaryDataPath = "/app/backend/data"
	AuxiliaryPort   = "9998/tcp"

	// PrimaryURL is where the consuming application finds Open WebUI.
	PrimaryURL = "http://localhost:" + PrimaryHostPort
	HealthURL  = PrimaryURL + "/health"

	// Restricts ports published on the frontend network to the loopback interface.
	hostBindingOption = "com.docker.network.bridge.host_binding_ipv4"
)

// primaryEnv runs Open WebUI in single-user mode.
var primaryEnv = []string{
	"ENV=dev",
	"WEBUI_AUTH=false",
}

// NetworkSpecs returns the frontend and backend networks in creation order.
// Only the frontend network is ever published to the host.
func (s *Stack) NetworkSpecs() []docker.NetworkSpec {
	return []docker.NetworkSpec{
		{
			Name:    s.ns.FrontendNetwork(),
			Driver:  "bridge",
			Options: map[string]string{hostBindingOption: "127.0.0.1"},
		},
		{
			Name: s.ns.BackendNetwork(),
		},
	}
}

// ContainerSpecs derives the container of every service in start order:
// Open WebUI, Tika, then the extra services in config order.
func (s *Stack) ContainerSpecs() []docker.ContainerSpec {
	specs := make([]docker.ContainerSpec, 0, len(s.cfg.ExtraBackendServices)+2)

	specs = append(specs, docker.ContainerSpec{
		Name:     s.ns.Primary(),
		Image:    PrimaryImage + ":" + s.cfg.OpenWebUIImageTag,
		Env:      append([]string(nil), primaryEnv...),
		Networks: []string{s.ns.FrontendNetwork(), s.ns.BackendNetwork()},
		Ports:    []docker.PortSpec{{Port: PrimaryPort, HostPort: PrimaryHostPort}},
		Binds:    []string{s.dataDir + ":" + PrimaryDataPath},
		Labels:   labels("openwebui"),
	})

	specs = append(specs, docker.ContainerSpec{
		Name:     s.ns.Auxiliary(),
		Image:    AuxiliaryImage + ":" + s.cfg.TikaImageTag,
		Networks: []string{s.ns.BackendNetwork()},
		Ports:    []docker.PortSpec{{Port: AuxiliaryPort}},
		Labels:   labels("tika"),
	})

	for _, svc := range s.cfg.ExtraBackendServices {
		spec := docker.ContainerSpec{
			Name:       s.ns.Service(svc.Name),
			Image:      svc.Image,
			Command:    svc.Command,
			Env:        svc.Env,
			User:       svc.User,
			WorkingDir: svc.WorkingDir,
			Networks:   []string{s.ns.BackendNetwork()},
			Labels:     labels(svc.Name),
		}
		// Extra services are backend-only: exposed, never bound to the host.
		for _, p := range svc.Ports {
			spec.Ports = append(spec.Ports, docker.PortSpec{Port: p})
		}
		for _, v := range svc.Volumes {
			spec.Binds = append(spec.Binds, v.Bind())
		}
		specs = append(specs, spec)
	}

	return specs
}

// CreateInfrastructure creates both networks, then creates and starts each
// container in order. It stops at the first failure and leaves whatever was
// already created in place; rolling back is the caller's job.
func (s *Stack) CreateInfrastructure(ctx context.Context) error {
	for _, spec := range s.NetworkSpecs() {
		if err := s.engine.CreateNetwork(ctx, spec); err != nil {
			return fmt.Errorf("create network %s: %w", spec.Name, err)
		}
		s.log.Info("created network", "network", spec.Name)
	}

	for _, spec := range s.ContainerSpecs() {
		id, err := s.engine.CreateContainer(ctx, spec)
		if err != nil {
			return fmt.Errorf("create container %s: %w", spec.Name, err)
		}
		if err := s.engine.StartContainer(ctx, id); err != nil {
			return fmt.Errorf("start container %s: %w", spec.Name, err)
		}
		s.log.Info("started container", "container", spec.Name, "image", spec.Image)
	}

	return nil
}

func labels(service string) map[string]string {
	return map[string]string{
		docker.LabelManaged: "true",
		docker.LabelService: service,
	}
}
