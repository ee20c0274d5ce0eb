// Package config loads code generation settings from YAML or TOML files and
// THRIFTLITE_* environment variables.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/anirudhraja/thriftlite/compiler"
	"github.com/anirudhraja/thriftlite/gen"
)

// Config holds code generation settings. Precedence, lowest first:
// defaults, config file, environment, command-line flags.
type Config struct {
	Package          string   `yaml:"package" toml:"package"`
	RuntimeImport    string   `yaml:"runtime_import" toml:"runtime_import"`
	IncludeWriter    bool     `yaml:"include_writer" toml:"include_writer"`
	ZeroInstance     bool     `yaml:"zero_instance" toml:"zero_instance"`
	Output           string   `yaml:"output" toml:"output"`
	ProtoDirectories []string `yaml:"proto_directories" toml:"proto_directories"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		IncludeWriter: true,
		ZeroInstance:  true,
	}
}

// Load reads path over the defaults and applies the environment. An empty
// path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(buf))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}
	case ".toml":
		meta, err := toml.Decode(string(buf), c)
		if err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("load config %s: unknown key %s", path, undecoded[0])
		}
	default:
		return fmt.Errorf("load config %s: unsupported extension %q", path, ext)
	}
	return nil
}

// ApplyEnv overrides settings from THRIFTLITE_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("THRIFTLITE_PACKAGE"); ok {
		c.Package = v
	}
	if v, ok := lookup("THRIFTLITE_RUNTIME_IMPORT"); ok {
		c.RuntimeImport = v
	}
	if v, ok := lookup("THRIFTLITE_OUTPUT"); ok {
		c.Output = v
	}
	if v, ok := lookup("THRIFTLITE_PROTO_PATH"); ok {
		c.ProtoDirectories = filepath.SplitList(v)
	}
	if v, ok := lookup("THRIFTLITE_READ_ONLY"); ok {
		b, err := envBool("THRIFTLITE_READ_ONLY", v)
		if err != nil {
			return err
		}
		c.IncludeWriter = !b
	}
	if v, ok := lookup("THRIFTLITE_ZERO_INSTANCE"); ok {
		b, err := envBool("THRIFTLITE_ZERO_INSTANCE", v)
		if err != nil {
			return err
		}
		c.ZeroInstance = b
	}
	return nil
}

func envBool(name, v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("%s: invalid boolean %q", name, v)
}

// CompilerOptions returns the compiler settings.
func (c Config) CompilerOptions() compiler.Options {
	return compiler.Options{ZeroInstance: c.ZeroInstance}
}

// GenOptions returns the emitter settings.
func (c Config) GenOptions() gen.Options {
	return gen.Options{
		Package:       c.Package,
		RuntimeImport: c.RuntimeImport,
		IncludeWriter: c.IncludeWriter,
	}
}
