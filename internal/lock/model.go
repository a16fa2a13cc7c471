package lock

// FileName is the lock file at the workspace root.
const FileName = "monows.lock.yaml"

// File represents monows.lock.yaml.
type File struct {
	Version         int               `yaml:"version"`
	Name            string            `yaml:"name"`
	GeneratedAt     string            `yaml:"generated_at"`
	ToolVersion     string            `yaml:"tool_version"`
	Repos           map[string]*Repo  `yaml:"repos,omitempty"`
	Dependencies    map[string]string `yaml:"dependencies,omitempty"`
	DevDependencies map[string]string `yaml:"dev_dependencies,omitempty"`
}

// Repo records the cloned state of a single package repository.
type Repo struct {
	URL    string `yaml:"url,omitempty"`
	Ref    string `yaml:"ref,omitempty"`
	Commit string `yaml:"commit"`
}

// New returns an empty lock for the named workspace.
func New(name string) *File {
	return &File{Version: 1, Name: name, Repos: map[string]*Repo{}}
}
