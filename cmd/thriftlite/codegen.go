package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/anirudhraja/thriftlite/parser"
)

// codegenCommand compiles a schema and writes Go source.
type codegenCommand struct {
	g *globalFlags

	path           *string
	out            *string
	pkg            *string
	runtimeImport  *string
	source         *string
	readOnly       *bool
	noZeroInstance *bool
}

func registerCodegen(app *kingpin.Application, g *globalFlags) {
	cmd := &codegenCommand{g: g}
	c := app.Command("codegen", "Generate Go code from a .thrift file, directory or .proto file.")
	cmd.path = c.Arg("path", "Schema file or directory.").Required().String()
	cmd.out = c.Flag("out", "Output file (default stdout).").Short('o').String()
	cmd.pkg = c.Flag("package", "Go package name (default from the go namespace).").String()
	cmd.runtimeImport = c.Flag("runtime-import", "Import path of the wire runtime.").String()
	cmd.source = c.Flag("source", "Source name recorded in the generated header.").String()
	cmd.readOnly = c.Flag("read-only", "Omit Write methods.").Bool()
	cmd.noZeroInstance = c.Flag("no-zero-instance", "Allocate field-less structs on every decode.").Bool()
	c.Action(cmd.run)
}

func (cmd *codegenCommand) run(_ *kingpin.ParseContext) error {
	log := cmd.g.newLogger()
	defer func() { _ = log.Sync() }()

	cfg, err := cmd.g.settings()
	if err != nil {
		return err
	}
	if *cmd.pkg != "" {
		cfg.Package = *cmd.pkg
	}
	if *cmd.runtimeImport != "" {
		cfg.RuntimeImport = *cmd.runtimeImport
	}
	if *cmd.out != "" {
		cfg.Output = *cmd.out
	}
	if *cmd.readOnly {
		cfg.IncludeWriter = false
	}
	if *cmd.noZeroInstance {
		cfg.ZeroInstance = false
	}

	api, err := cmd.g.load(*cmd.path, cfg, log)
	if err != nil {
		return err
	}

	opts := cfg.GenOptions()
	opts.Source = *cmd.source
	src, err := api.Generate(opts)
	if err != nil {
		return err
	}

	if cfg.Output == "" {
		_, err = os.Stdout.Write(src)
		return err
	}
	if err := os.WriteFile(cfg.Output, src, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Output, err)
	}
	log.Info("wrote generated code",
		zap.String("file", cfg.Output),
		zap.Int("bytes", len(src)))
	return nil
}

// parseCommand dumps the schema model of one .thrift file as JSON.
type parseCommand struct {
	path *string
}

func registerParse(app *kingpin.Application, _ *globalFlags) {
	cmd := &parseCommand{}
	c := app.Command("parse", "Print the parsed schema of a .thrift file as JSON.")
	cmd.path = c.Arg("path", "Schema file.").Required().ExistingFile()
	c.Action(cmd.run)
}

func (cmd *parseCommand) run(_ *kingpin.ParseContext) error {
	src, err := os.ReadFile(*cmd.path)
	if err != nil {
		return err
	}
	doc, err := parser.Parse(string(src))
	if err != nil {
		return fmt.Errorf("%s:%w", *cmd.path, err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
