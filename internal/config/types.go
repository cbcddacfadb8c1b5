package config

// Default values applied when a key is missing from the config file.
const (
	DefaultOpenWebUIImageTag = "latest"
	DefaultTikaImageTag      = "latest-full"
	DefaultNamespace         = "local_llm_"
	DefaultPullConcurrency   = 1
	DefaultLogLevel          = "info"
)

// Config represents the root of llmstack.yaml
type Config struct {
	OpenWebUIImageTag    string         `mapstructure:"openwebui_image_tag" yaml:"openwebui_image_tag"`
	TikaImageTag         string         `mapstructure:"tika_image_tag" yaml:"tika_image_tag"`
	ExtraBackendServices []ExtraService `mapstructure:"extra_backend_services" yaml:"extra_backend_services,omitempty"`

	Namespace       string `mapstructure:"namespace" yaml:"namespace,omitempty"`          // prefix for every network and container name
	DataDir         string `mapstructure:"data_dir" yaml:"data_dir,omitempty"`            // host dir mounted into Open WebUI
	PullConcurrency int    `mapstructure:"pull_concurrency" yaml:"pull_concurrency,omitempty"`
	LogLevel        string `mapstructure:"log_level" yaml:"log_level,omitempty"`
}

// ExtraService is an additional container that runs on the backend network only.
type ExtraService struct {
	Name       string          `mapstructure:"name" yaml:"name"`   // e.g., "searxng", becomes local_llm_searxng
	Image      string          `mapstructure:"image" yaml:"image"` // e.g., "searxng/searxng:latest"
	Command    []string        `mapstructure:"command" yaml:"command,omitempty"`
	Env        []string        `mapstructure:"env" yaml:"env,omitempty"`     // e.g., ["KEY=VALUE"]
	User       string          `mapstructure:"user" yaml:"user,omitempty"`   // e.g., "1000:1000"
	Ports      []string        `mapstructure:"ports" yaml:"ports,omitempty"` // e.g., ["8080/tcp"]
	Volumes    []VolumeBinding `mapstructure:"volumes" yaml:"volumes,omitempty"`
	WorkingDir string          `mapstructure:"working_dir" yaml:"working_dir,omitempty"`
}

// VolumeBinding maps a host path into a container.
type VolumeBinding struct {
	HostPath      string `mapstructure:"host_path" yaml:"host_path"`
	ContainerPath string `mapstructure:"container_path" yaml:"container_path"`
}

// Bind returns the binding in the engine's "host:container" form.
func (b VolumeBinding) Bind() string {
	return b.HostPath + ":" + b.ContainerPath
}

// Default returns a Config with every default applied and no extra services.
func Default() *Config {
	return &Config{
		OpenWebUIImageTag: DefaultOpenWebUIImageTag,
		TikaImageTag:      DefaultTikaImageTag,
		Namespace:         DefaultNamespace,
		PullConcurrency:   DefaultPullConcurrency,
		LogLevel:          DefaultLogLevel,
	}
}
