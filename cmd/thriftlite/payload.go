package main

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/anirudhraja/thriftlite/dynamic"
	"github.com/anirudhraja/thriftlite/wire"
)

// decodeCommand prints a payload as JSON.
type decodeCommand struct {
	g *globalFlags

	schema    *string
	structure *string
	file      *string
	hexInput  *bool
	raw       *bool
	enumNames *bool
	defaults  *bool
}

func registerDecode(app *kingpin.Application, g *globalFlags) {
	cmd := &decodeCommand{g: g}
	c := app.Command("decode", "Decode a compact protocol payload to JSON.")
	cmd.schema = c.Arg("schema", "Schema file or directory.").Required().String()
	cmd.structure = c.Arg("struct", "Struct the payload holds.").Required().String()
	cmd.file = c.Arg("file", "Payload file (default stdin).").String()
	cmd.hexInput = c.Flag("hex", "Payload is hex text.").Bool()
	cmd.raw = c.Flag("raw", "Decode without the schema, keyed by field id.").Bool()
	cmd.enumNames = c.Flag("enum-names", "Print enum symbols instead of numbers.").Bool()
	cmd.defaults = c.Flag("defaults", "Fill absent fields with their initial values.").Bool()
	c.Action(cmd.run)
}

func (cmd *decodeCommand) run(_ *kingpin.ParseContext) error {
	log := cmd.g.newLogger()
	defer func() { _ = log.Sync() }()

	data, err := readInput(*cmd.file, *cmd.hexInput)
	if err != nil {
		return err
	}

	cfg, err := cmd.g.settings()
	if err != nil {
		return err
	}
	api, err := cmd.g.load(*cmd.schema, cfg, log)
	if err != nil {
		return err
	}

	var out any
	if *cmd.raw {
		out, err = api.ParseRaw(data)
	} else {
		api.SetDecodeOptions(dynamic.Options{
			PopulateDefaults: *cmd.defaults,
			EnumNames:        *cmd.enumNames,
		})
		out, err = api.Parse(data, *cmd.structure)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonable(out))
}

// encodeCommand encodes a JSON document as the named struct.
type encodeCommand struct {
	g *globalFlags

	schema    *string
	structure *string
	file      *string
	hexOutput *bool
}

func registerEncode(app *kingpin.Application, g *globalFlags) {
	cmd := &encodeCommand{g: g}
	c := app.Command("encode", "Encode a JSON document as a compact protocol payload.")
	cmd.schema = c.Arg("schema", "Schema file or directory.").Required().String()
	cmd.structure = c.Arg("struct", "Struct to encode as.").Required().String()
	cmd.file = c.Arg("file", "JSON file (default stdin).").String()
	cmd.hexOutput = c.Flag("hex", "Print the payload as hex text.").Bool()
	c.Action(cmd.run)
}

func (cmd *encodeCommand) run(_ *kingpin.ParseContext) error {
	log := cmd.g.newLogger()
	defer func() { _ = log.Sync() }()

	in, err := readInput(*cmd.file, false)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(in))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parse JSON input: %w", err)
	}

	cfg, err := cmd.g.settings()
	if err != nil {
		return err
	}
	api, err := cmd.g.load(*cmd.schema, cfg, log)
	if err != nil {
		return err
	}

	data, err := api.Marshal(doc, *cmd.structure)
	if err != nil {
		return err
	}
	if *cmd.hexOutput {
		_, err = fmt.Println(hex.EncodeToString(data))
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func readInput(path string, hexText bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if !hexText {
		return data, nil
	}
	clean := strings.Join(strings.Fields(string(data)), "")
	out, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("decode hex input: %w", err)
	}
	return out, nil
}

// jsonable rewrites decoded values so encoding/json accepts them: maps with
// non-string keys become sorted [key, value] pairs and binary becomes base64.
func jsonable(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = jsonable(e)
		}
		return out
	case map[any]any:
		pairs := make([][2]any, 0, len(x))
		for k, e := range x {
			pairs = append(pairs, [2]any{jsonable(k), jsonable(e)})
		}
		sort.Slice(pairs, func(i, j int) bool {
			return fmt.Sprint(pairs[i][0]) < fmt.Sprint(pairs[j][0])
		})
		return pairs
	case wire.StructValue:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = jsonable(e)
		}
		return out
	case []wire.MapEntry:
		pairs := make([][2]any, len(x))
		for i, e := range x {
			pairs[i] = [2]any{jsonable(e.Key), jsonable(e.Value)}
		}
		return pairs
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = jsonable(e)
		}
		return out
	case []byte:
		return base64.StdEncoding.EncodeToString(x)
	}
	return v
}
