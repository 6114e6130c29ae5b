package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	xtal "github.com/rmera/goxtal"
	"github.com/rmera/goxtal/reader"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// globals are the flags shared by all the commands.
type globals struct {
	filter    string
	optsFile  string
	verbosity int
	logFile   string
}

func (g *globals) addFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVarP(&g.filter, "filter", "f", "", `reading options, such as "PACKED;MODEL 2"`)
	f.StringVarP(&g.optsFile, "options", "o", "", "YAML file with reading options")
	f.CountVarP(&g.verbosity, "verbose", "v", "log more, can be repeated")
	f.StringVar(&g.logFile, "log", "", "write the log to this file instead of stderr")
}

func (g *globals) configureLogging() {
	xtal.ConfigureLogging(g.verbosity, g.logFile)
}

// options returns the reading options. The filter of the YAML file, if any, is joined with
// the filter flag, and the other fields of the file are set on top of the result.
func (g *globals) options() (xtal.Options, error) {
	if g.optsFile == "" {
		return xtal.ParseOptions(g.filter), nil
	}
	data, err := os.ReadFile(g.optsFile)
	if err != nil {
		return xtal.Options{}, fmt.Errorf("read options: %w", err)
	}
	var file xtal.Options
	if err := yaml.Unmarshal(data, &file); err != nil {
		return xtal.Options{}, fmt.Errorf("parse options %s: %w", g.optsFile, err)
	}
	filter := strings.Trim(file.Filter+";"+g.filter, ";")
	opts := xtal.ParseOptions(filter)
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return xtal.Options{}, fmt.Errorf("parse options %s: %w", g.optsFile, err)
	}
	opts.Filter = filter
	return opts, nil
}

// read reads a file, or the standard input if path is "-". Non-critical errors, such as
// files without atoms, are returned with the collection.
func (g *globals) read(path string) (*xtal.AtomSetCollection, error) {
	opts, err := g.options()
	if err != nil {
		return nil, err
	}
	if len(opts.Extra) > 0 {
		xtal.Logger("xtalinfo").Warningf("unknown options ignored: %s", strings.Join(opts.Extra, " "))
	}
	if path == "-" {
		return reader.ReadNamed(os.Stdin, "stdin", opts)
	}
	return reader.ReadFile(path, opts)
}

// critical tells whether err should stop the command.
func critical(err error) bool {
	if err == nil {
		return false
	}
	var e xtal.Error
	if errors.As(err, &e) {
		return e.Critical()
	}
	return true
}
