package stack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/docker/docker/errdefs"

	"github.com/sarth-shah20/llmstack/internal/config"
	"github.com/sarth-shah20/llmstack/internal/docker"
)

// fakeEngine is an in-memory engine. Names are unique like on a real engine
// and list filters match substrings like the engine's name filter.
type fakeEngine struct {
	mu         sync.Mutex
	networks   map[string]docker.NetworkSpec
	containers map[string]*fakeContainer
	pulled     []string
	calls      []string
	fail       map[string]error // keyed by "op name", e.g. "remove local_llm_tika"
	nextID     int
}

type fakeContainer struct {
	id      string
	spec    docker.ContainerSpec
	running bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		networks:   map[string]docker.NetworkSpec{},
		containers: map[string]*fakeContainer{},
		fail:       map[string]error{},
	}
}

func (f *fakeEngine) failOn(op, name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op+" "+name] = err
}

// record logs the call and returns the injected failure for it, if any.
func (f *fakeEngine) record(op, name string) error {
	f.calls = append(f.calls, op+" "+name)
	return f.fail[op+" "+name]
}

func (f *fakeEngine) byNameOrID(nameOrID string) *fakeContainer {
	if c, ok := f.containers[nameOrID]; ok {
		return c
	}
	for _, c := range f.containers {
		if c.id == nameOrID {
			return c
		}
	}
	return nil
}

func notFound(entity, name string) error {
	return &docker.EngineError{Op: "lookup", Entity: entity, Name: name, Err: errdefs.NotFound(errors.New("no such " + entity))}
}

func conflict(entity, name string) error {
	return &docker.EngineError{Op: "create", Entity: entity, Name: name, Err: errdefs.Conflict(errors.New(entity + " name already in use"))}
}

func (f *fakeEngine) PullImage(_ context.Context, image string, onProgress func(docker.PullProgress)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("pull", image); err != nil {
		return err
	}
	f.pulled = append(f.pulled, image)
	if onProgress != nil {
		onProgress(docker.PullProgress{Image: image, ID: "layer", Status: "Downloading", Current: 1 << 20, Total: 2 << 20})
		onProgress(docker.PullProgress{Image: image, Status: "Pull complete"})
	}
	return nil
}

func (f *fakeEngine) CreateNetwork(_ context.Context, spec docker.NetworkSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create-network", spec.Name); err != nil {
		return err
	}
	if _, ok := f.networks[spec.Name]; ok {
		return conflict("network", spec.Name)
	}
	f.networks[spec.Name] = spec
	return nil
}

func (f *fakeEngine) ListNetworks(_ context.Context, nameFilter string) ([]docker.NetworkInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list-networks", nameFilter); err != nil {
		return nil, err
	}
	var out []docker.NetworkInfo
	for _, name := range sortedKeys(f.networks) {
		if strings.Contains(name, nameFilter) {
			out = append(out, docker.NetworkInfo{ID: "id-" + name, Name: name, Driver: f.networks[name].Driver})
		}
	}
	return out, nil
}

func (f *fakeEngine) RemoveNetwork(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("remove-network", name); err != nil {
		return err
	}
	if _, ok := f.networks[name]; !ok {
		return notFound("network", name)
	}
	for _, c := range f.containers {
		for _, n := range c.spec.Networks {
			if n == name {
				return &docker.EngineError{Op: "remove", Entity: "network", Name: name, Err: errdefs.Forbidden(errors.New("network has active endpoints"))}
			}
		}
	}
	delete(f.networks, name)
	return nil
}

func (f *fakeEngine) CreateContainer(_ context.Context, spec docker.ContainerSpec) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create", spec.Name); err != nil {
		return "", err
	}
	if _, ok := f.containers[spec.Name]; ok {
		return "", conflict("container", spec.Name)
	}
	for _, n := range spec.Networks {
		if _, ok := f.networks[n]; !ok {
			return "", notFound("network", n)
		}
	}
	f.nextID++
	id := fmt.Sprintf("c%d", f.nextID)
	f.containers[spec.Name] = &fakeContainer{id: id, spec: spec}
	return id, nil
}

func (f *fakeEngine) StartContainer(_ context.Context, nameOrID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.byNameOrID(nameOrID)
	name := nameOrID
	if c != nil {
		name = c.spec.Name
	}
	if err := f.record("start", name); err != nil {
		return err
	}
	if c == nil {
		return notFound("container", nameOrID)
	}
	c.running = true
	return nil
}

func (f *fakeEngine) StopContainer(_ context.Context, nameOrID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("stop", nameOrID); err != nil {
		return err
	}
	c := f.byNameOrID(nameOrID)
	if c == nil {
		return notFound("container", nameOrID)
	}
	if !c.running {
		return errors.New("container is not running")
	}
	c.running = false
	return nil
}

func (f *fakeEngine) RemoveContainer(_ context.Context, nameOrID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("remove", nameOrID); err != nil {
		return err
	}
	c := f.byNameOrID(nameOrID)
	if c == nil {
		return notFound("container", nameOrID)
	}
	delete(f.containers, c.spec.Name)
	return nil
}

func (f *fakeEngine) ListContainers(_ context.Context, nameFilters ...string) ([]docker.ContainerInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list", strings.Join(nameFilters, ",")); err != nil {
		return nil, err
	}
	var out []docker.ContainerInfo
	for _, name := range sortedKeys(f.containers) {
		if !matchesAny(name, nameFilters) {
			continue
		}
		c := f.containers[name]
		state := "exited"
		if c.running {
			state = "running"
		}
		out = append(out, docker.ContainerInfo{ID: c.id, Name: name, Image: c.spec.Image, State: state})
	}
	return out, nil
}

// seedContainer adds a container that was not created through the stack.
func (f *fakeEngine) seedContainer(name string, running bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.containers[name] = &fakeContainer{id: fmt.Sprintf("c%d", f.nextID), spec: docker.ContainerSpec{Name: name, Image: "busybox"}, running: running}
}

func (f *fakeEngine) seedNetwork(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.networks[name] = docker.NetworkSpec{Name: name}
}

func (f *fakeEngine) containerNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return sortedKeys(f.containers)
}

func (f *fakeEngine) networkNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return sortedKeys(f.networks)
}

// callsWithPrefix returns the recorded calls for one operation.
func (f *fakeEngine) callsWithPrefix(op string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, op+" ") {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeEngine) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func matchesAny(name string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, flt := range filters {
		if strings.Contains(name, flt) {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// fakeGate returns err after counting the call.
type fakeGate struct {
	calls int
	err   error
}

func (g *fakeGate) Wait(context.Context) error {
	g.calls++
	return g.err
}

func testConfig(extra ...config.ExtraService) *config.Config {
	cfg := config.Default()
	cfg.ExtraBackendServices = extra
	return cfg
}

func newTestStack(engine Engine, cfg *config.Config, gate Waiter) *Stack {
	if gate == nil {
		gate = &fakeGate{}
	}
	return New(engine, cfg, Options{
		DataDir: "/home/user/.local/share/llmstack/openwebui/data",
		Gate:    gate,
		Logger:  log.New(io.Discard),
	})
}
