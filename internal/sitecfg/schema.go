package sitecfg

// File represents the top-level structure of site.yaml.
type File struct {
	Locales    LocalesConfig     `yaml:"locales"`
	Developers []DeveloperConfig `yaml:"developers"`
	Health     []TargetConfig    `yaml:"health_targets"`
}

// LocalesConfig declares the supported locales, the default and the
// country to locale table.
type LocalesConfig struct {
	Default   string            `yaml:"default"`
	Supported []string          `yaml:"supported"`
	Countries map[string]string `yaml:"countries"`
}

// DeveloperConfig is one tracked presence identity.
type DeveloperConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// TargetConfig is one monitored health-check endpoint.
type TargetConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}
