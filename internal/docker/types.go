package docker

import "time"

// Labels attached to every container the manager creates.
const (
	LabelManaged = "llmstack.managed"
	LabelService = "llmstack.service"
)

// NetworkSpec describes a network to create.
type NetworkSpec struct {
	Name    string
	Driver  string            // "" lets the engine pick its default
	Options map[string]string // driver options, e.g. host_binding_ipv4
	Labels  map[string]string
}

// PortSpec is a container port with an optional fixed host binding.
type PortSpec struct {
	Port     string // "8080/tcp"; a missing protocol means tcp
	HostIP   string // "" lets the network decide
	HostPort string // "" means exposed without a host binding
}

// ContainerSpec is everything needed to create one container.
type ContainerSpec struct {
	Name       string
	Image      string
	Command    []string
	Env        []string // KEY=VALUE
	User       string
	WorkingDir string
	Networks   []string // the first one is joined at create time
	Ports      []PortSpec
	Binds      []string // "host:container"
	Labels     map[string]string
}

// ContainerInfo is the subset of a listed container the stack cares about.
type ContainerInfo struct {
	ID      string
	Name    string // without the leading slash
	Image   string
	State   string // "running", "exited", "created", ...
	Status  string // human readable, e.g. "Up 3 minutes"
	Created time.Time
	Ports   []string // "11690->8080/tcp"
}

// NetworkInfo is the subset of a listed network the stack cares about.
type NetworkInfo struct {
	ID     string
	Name   string
	Driver string
}

// PullProgress is one decoded record of an image pull stream.
type PullProgress struct {
	Image   string
	ID      string // layer id, empty for image-level messages
	Status  string // e.g. "Downloading", "Pull complete"
	Current int64
	Total   int64
}
