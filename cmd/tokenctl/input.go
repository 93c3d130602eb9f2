package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"memecoin-creator/internal/domain"
	"memecoin-creator/internal/tokenconfig"
)

// inputFlags collects a TokenConfigInput from a file and/or flags.
// Flags set on the command line override values read from the file.
type inputFlags struct {
	file string

	name          string
	symbol        string
	initialSupply string
	decimals      int
	advanced      bool

	canBurn        bool
	canMint        bool
	canPause       bool
	blacklist      bool
	deflation      bool
	superDeflation bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	defaults := tokenconfig.DefaultInput()

	fl := cmd.Flags()
	fl.StringVarP(&f.file, "file", "f", "", "read the token config from a YAML or JSON file (- for stdin)")
	fl.StringVar(&f.name, "name", "", "token name")
	fl.StringVar(&f.symbol, "symbol", "", "token symbol")
	fl.StringVar(&f.initialSupply, "supply", defaults.InitialSupply, "initial supply in whole tokens")
	fl.IntVar(&f.decimals, "decimals", defaults.Decimals, "token decimals")
	fl.BoolVar(&f.advanced, "advanced", false, "enable advanced settings")
	fl.BoolVar(&f.canBurn, "can-burn", false, "holders can burn tokens (advanced)")
	fl.BoolVar(&f.canMint, "can-mint", false, "owner can mint tokens (advanced)")
	fl.BoolVar(&f.canPause, "can-pause", false, "owner can pause transfers (advanced)")
	fl.BoolVar(&f.blacklist, "blacklist", false, "enable address blacklist (advanced)")
	fl.BoolVar(&f.deflation, "deflation", false, "enable deflation (advanced)")
	fl.BoolVar(&f.superDeflation, "super-deflation", false, "enable super deflation (advanced)")
}

func (f *inputFlags) input(cmd *cobra.Command) (domain.TokenConfigInput, error) {
	in := tokenconfig.DefaultInput()
	if f.file != "" {
		fromFile, err := readInputFile(cmd.InOrStdin(), f.file)
		if err != nil {
			return in, err
		}
		in = fromFile
	}

	fl := cmd.Flags()
	if fl.Changed("name") {
		in.Name = f.name
	}
	if fl.Changed("symbol") {
		in.Symbol = f.symbol
	}
	if fl.Changed("supply") || f.file == "" {
		in.InitialSupply = f.initialSupply
	}
	if fl.Changed("decimals") || f.file == "" {
		in.Decimals = f.decimals
	}
	if fl.Changed("advanced") {
		in.AdvancedEnabled = f.advanced
	}

	flags := []struct {
		name   string
		value  bool
		target **bool
	}{
		{"can-burn", f.canBurn, &in.CanBurn},
		{"can-mint", f.canMint, &in.CanMint},
		{"can-pause", f.canPause, &in.CanPause},
		{"blacklist", f.blacklist, &in.BlacklistEnabled},
		{"deflation", f.deflation, &in.DeflationEnabled},
		{"super-deflation", f.superDeflation, &in.SuperDeflationEnabled},
	}
	for _, b := range flags {
		if fl.Changed(b.name) {
			v := b.value
			*b.target = &v
		}
	}
	return in, nil
}

// readInputFile decodes a YAML or JSON token config. YAML is a superset of
// JSON, so one decoder serves both.
func readInputFile(stdin io.Reader, path string) (domain.TokenConfigInput, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return domain.TokenConfigInput{}, fmt.Errorf("read token config: %w", err)
	}

	var in domain.TokenConfigInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return domain.TokenConfigInput{}, fmt.Errorf("parse token config: %w", err)
	}
	return in, nil
}

// render writes v in the selected format. text falls back to the given printer.
func render(cmd *cobra.Command, format string, v any, text func(io.Writer) error) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return text(out)
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}
