// Command thriftlite generates Go code from schema files and inspects
// compact protocol payloads.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/anirudhraja/thriftlite"
	"github.com/anirudhraja/thriftlite/config"
	"github.com/anirudhraja/thriftlite/registry"
)

// globalFlags are shared by every command.
type globalFlags struct {
	verbose    *bool
	configPath *string
	protoPath  *[]string
}

func main() {
	app := kingpin.New("thriftlite", "Compact protocol schema compiler and payload inspector.")
	app.HelpFlag.Short('h')

	g := &globalFlags{
		verbose:    app.Flag("verbose", "Log debug output to stderr.").Short('v').Bool(),
		configPath: app.Flag("config", "YAML or TOML settings file.").String(),
		protoPath:  app.Flag("proto-path", "Directory searched for .proto imports (repeatable).").Short('I').Strings(),
	}

	registerCodegen(app, g)
	registerParse(app, g)
	registerDecode(app, g)
	registerEncode(app, g)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

// newLogger builds a development logger when verbose, else a production
// logger that only reports warnings.
func (g *globalFlags) newLogger() *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if *g.verbose {
		log, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		log, err = cfg.Build()
	}
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// settings loads the config file and environment, then applies flags.
func (g *globalFlags) settings() (config.Config, error) {
	cfg, err := config.Load(*g.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if len(*g.protoPath) > 0 {
		cfg.ProtoDirectories = *g.protoPath
	}
	return cfg, nil
}

// load reads a schema: a .proto file through the importer, anything else as
// a .thrift file or directory.
func (g *globalFlags) load(path string, cfg config.Config, log *zap.Logger) (*thriftlite.Thriftlite, error) {
	api := thriftlite.New(
		registry.WithLogger(log),
		registry.WithProtoDirectories(cfg.ProtoDirectories...),
	)
	api.SetCompilerOptions(cfg.CompilerOptions())

	var err error
	if strings.HasSuffix(path, ".proto") {
		err = api.LoadProto(path)
	} else {
		err = api.LoadSchema(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return api, nil
}
