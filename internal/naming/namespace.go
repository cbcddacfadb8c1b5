// Package naming derives every engine resource name from a single prefix.
//
// Resources are found again by name on every operation rather than through
// stored handles, so the names must be a pure function of the prefix and the
// service identity.
package naming

const (
	frontendNetwork = "frontend"
	backendNetwork  = "backend"
	primaryService  = "openwebui"
	auxService      = "tika"
)

// Namespace derives network and container names from a prefix such as "local_llm_".
type Namespace struct {
	prefix string
}

// New returns a Namespace for prefix.
func New(prefix string) Namespace {
	return Namespace{prefix: prefix}
}

// Prefix returns the raw prefix.
func (n Namespace) Prefix() string { return n.prefix }

// FrontendNetwork is the host-reachable network.
func (n Namespace) FrontendNetwork() string { return n.prefix + frontendNetwork }

// BackendNetwork is the container-to-container network.
func (n Namespace) BackendNetwork() string { return n.prefix + backendNetwork }

// Primary is the Open WebUI container name.
func (n Namespace) Primary() string { return n.prefix + primaryService }

// Auxiliary is the Apache Tika container name.
func (n Namespace) Auxiliary() string { return n.prefix + auxService }

// Service returns the container name of a user-defined extra service.
func (n Namespace) Service(name string) string { return n.prefix + name }

// Networks returns both network names, frontend first.
func (n Namespace) Networks() []string {
	return []string{n.FrontendNetwork(), n.BackendNetwork()}
}

// Containers returns the primary, auxiliary and extra container names in
// provisioning order.
func (n Namespace) Containers(extra []string) []string {
	names := make([]string, 0, len(extra)+2)
	names = append(names, n.Primary(), n.Auxiliary())
	for _, e := range extra {
		names = append(names, n.Service(e))
	}
	return names
}

// ReservedServices returns the service names of the two fixed containers.
// An extra service may not reuse them, since it would derive the same
// container name.
func ReservedServices() []string {
	return []string{primaryService, auxService}
}
