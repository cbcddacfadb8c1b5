package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/docker/go-connections/nat"

	"github.com/sarth-shah20/llmstack/internal/naming"
)

// ErrInvalid is wrapped by every ValidationError.
var ErrInvalid = errors.New("invalid configuration")

// Container and network names accepted by the engine. The namespace is a
// prefix of both, so it is held to the same pattern.
var serviceNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

var validProto = map[string]bool{"tcp": true, "udp": true, "sctp": true}

// ValidationError lists every problem found in a Config.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Validate checks the config before any engine call is made.
// Extra service names must be non-empty, unique and distinct from the fixed
// services because they derive container names.
func (c *Config) Validate() error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.OpenWebUIImageTag == "" {
		addf("openwebui_image_tag is empty")
	}
	if c.TikaImageTag == "" {
		addf("tika_image_tag is empty")
	}
	switch {
	case c.Namespace == "":
		addf("namespace is empty")
	case !serviceNamePattern.MatchString(c.Namespace):
		addf("namespace %q may only contain letters, digits, '_', '.' and '-'", c.Namespace)
	}
	if c.PullConcurrency < 0 {
		addf("pull_concurrency must not be negative")
	}

	reserved := make(map[string]bool, 2)
	for _, name := range naming.ReservedServices() {
		reserved[name] = true
	}

	seen := make(map[string]int, len(c.ExtraBackendServices))
	for i, svc := range c.ExtraBackendServices {
		where := fmt.Sprintf("extra_backend_services[%d]", i)

		switch {
		case svc.Name == "":
			addf("%s: name is empty", where)
		case !serviceNamePattern.MatchString(svc.Name):
			addf("%s: name %q may only contain letters, digits, '_', '.' and '-'", where, svc.Name)
		case reserved[svc.Name]:
			addf("%s: name %q is reserved", where, svc.Name)
		default:
			if first, dup := seen[svc.Name]; dup {
				addf("%s: name %q already used by extra_backend_services[%d]", where, svc.Name, first)
			} else {
				seen[svc.Name] = i
			}
		}

		if svc.Image == "" {
			addf("%s: image is empty", where)
		}

		for _, kv := range svc.Env {
			if k, _, ok := strings.Cut(kv, "="); !ok || k == "" {
				addf("%s: env entry %q is not KEY=VALUE", where, kv)
			}
		}

		for _, p := range svc.Ports {
			proto, port := nat.SplitProtoPort(p)
			if _, err := nat.NewPort(proto, port); err != nil || port == "" || !validProto[proto] {
				addf("%s: port %q is not port/proto", where, p)
			}
		}

		for j, vol := range svc.Volumes {
			if vol.HostPath == "" {
				addf("%s: volumes[%d]: host_path is empty", where, j)
			}
			if vol.ContainerPath == "" {
				addf("%s: volumes[%d]: container_path is empty", where, j)
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
