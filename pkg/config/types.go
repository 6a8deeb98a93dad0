package config

const (
	ConfigFileName = "nexp.config.toml"

	DefaultSrcDir   = "src"
	DefaultDistDir  = "nexp-compiled"
	DefaultFilename = "server.ts"
)

type Config struct {
	SrcDir     string           `toml:"srcDir"`
	DistDir    string           `toml:"distDir"`
	Filename   string           `toml:"filename"`
	Convention ConventionConfig `toml:"convention"`
	Dev        DevConfig        `toml:"dev"`
}

// ConventionConfig holds optional overrides for the file-naming convention.
// Empty fields keep the built-in value.
type ConventionConfig struct {
	AppDir           string   `toml:"appDir,omitempty"`
	Extensions       []string `toml:"extensions,omitempty"`
	Route            string   `toml:"route,omitempty"`
	Middlewares      string   `toml:"middlewares,omitempty"`
	TailMiddlewares  string   `toml:"tailMiddlewares,omitempty"`
	Settings         string   `toml:"settings,omitempty"`
	CustomServer     string   `toml:"customServer,omitempty"`
	MethodNotAllowed string   `toml:"methodNotAllowed,omitempty"`
}

type DevConfig struct {
	DebounceMs int    `toml:"debounceMs"`
	StatusAddr string `toml:"statusAddr,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		SrcDir:   DefaultSrcDir,
		DistDir:  DefaultDistDir,
		Filename: DefaultFilename,
		Dev: DevConfig{
			DebounceMs: 100,
		},
	}
}
