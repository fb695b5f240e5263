/*
Copyright © 2024 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package kinutil holds the command-line interface to the kinetics
// packages.
package kinutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/kinetics"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to the kinetics tool.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel specifies the minimum severity of log messages:
              debug, info, warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Mechanism",
			usage: `
              Mechanism is the path to the CHEMKIN-format mechanism file
              to process. It may contain environment variables.`,
			shorthand:  "m",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "MechanismB",
			usage: `
              MechanismB is the path to the mechanism that Mechanism is
              compared to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{compareCmd.Flags()},
		},
		{
			name: "SpeciesTable",
			usage: `
              SpeciesTable is the path to a CSV or .xlsx table with "name"
              and "identifier" (or "SMILES") columns, and optionally
              "multiplicity" and "charge" columns, that identifies the
              species in Mechanism. If it is not given, species are
              identified by name.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{compareCmd.Flags()},
		},
		{
			name: "SpeciesTableB",
			usage: `
              SpeciesTableB is the species table for MechanismB.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{compareCmd.Flags()},
		},
		{
			name: "Conditions",
			usage: `
              Conditions is the path to a TOML file holding Temperatures
              and Pressures arrays. If it is given, it takes the place of
              the Temperatures and Pressures options.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{ratesCmd.Flags(), fitCmd.Flags(), compareCmd.Flags(), reverseCmd.Flags()},
		},
		{
			name: "Temperatures",
			usage: `
              Temperatures is the temperature grid [K] to evaluate rate
              constants on.`,
			shorthand:  "t",
			defaultVal: []float64{300, 400, 500, 600, 800, 1000, 1250, 1500, 1750, 2000},
			flagsets:   []*pflag.FlagSet{ratesCmd.Flags(), fitCmd.Flags(), compareCmd.Flags(), reverseCmd.Flags()},
		},
		{
			name: "Pressures",
			usage: `
              Pressures is the pressure grid [atm] to evaluate
              pressure-dependent rate constants on.`,
			shorthand:  "p",
			defaultVal: []float64{0.01, 0.1, 1, 10, 100},
			flagsets:   []*pflag.FlagSet{ratesCmd.Flags(), fitCmd.Flags(), compareCmd.Flags(), reverseCmd.Flags()},
		},
		{
			name: "Tmin",
			usage: `
              Tmin is the lowest temperature [K] of the data used in fits.
              Zero means no limit.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{fitCmd.Flags(), reverseCmd.Flags()},
		},
		{
			name: "Tmax",
			usage: `
              Tmax is the highest temperature [K] of the data used in fits.
              Zero means no limit.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{fitCmd.Flags(), reverseCmd.Flags()},
		},
		{
			name: "DoubleArrhenius",
			usage: `
              DoubleArrhenius specifies that double-Arrhenius fits should
              be attempted. They are only kept if they fit better than a
              single-Arrhenius expression.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{fitCmd.Flags(), reverseCmd.Flags()},
		},
		{
			name: "EaUnits",
			usage: `
              EaUnits specifies the activation energy units of output
              mechanisms: CAL/MOLE, KCAL/MOLE, JOULES/MOLE, KJOULES/MOLE,
              or KELVINS.`,
			defaultVal: "CAL/MOLE",
			flagsets:   []*pflag.FlagSet{parseCmd.Flags(), fitCmd.Flags(), reverseCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to write output to. If it is empty,
              output is written to standard output.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile is the path to save an Arrhenius plot of the rate
              constants to, with a format given by its extension (e.g.
              .png, .svg, .pdf). If it is empty, no plot is made.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{ratesCmd.Flags(), compareCmd.Flags()},
		},
		{
			name: "Reaction",
			usage: `
              Reaction restricts processing to the reactions with the given
              equation, for example "H+O2<=>O+OH". Species order and
              direction do not matter.`,
			shorthand:  "r",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{ratesCmd.Flags(), fitCmd.Flags(), compareCmd.Flags(), reverseCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("KINETICS")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case []float64:
				if option.shorthand == "" {
					set.Float64Slice(option.name, option.defaultVal.([]float64), option.usage)
				} else {
					set.Float64SliceP(option.name, option.shorthand, option.defaultVal.([]float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(parseCmd)
	Root.AddCommand(ratesCmd)
	Root.AddCommand(fitCmd)
	Root.AddCommand(compareCmd)
	Root.AddCommand(reverseCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the logging level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("kinetics: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("kinetics: invalid LogLevel: %v", err)
	}
	logrus.SetLevel(level)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "kinetics",
	Short: "A tool for working with chemical kinetics mechanisms.",
	Long: `kinetics reads CHEMKIN-format chemical kinetics mechanisms, evaluates
their rate constants, fits rate constants to Arrhenius expressions, and
compares and reverses reactions using species thermodynamic data.
Use the subcommands specified below to access this functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'KINETICS_var' where 'var' is the
name of the variable to be set. File paths may contain environment variables.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of kinetics.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("kinetics v%s\n", kinetics.Version)
	},
	DisableAutoGenTag: true,
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse and rewrite a mechanism.",
	Long: `parse reads Mechanism, reports a summary of its contents, and writes
its species and reactions to OutputFile with activation energies in EaUnits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		units, err := checkEaUnits(Cfg.GetString("EaUnits"))
		if err != nil {
			return err
		}
		m, err := readMechanism(Cfg.GetString("Mechanism"), true)
		if err != nil {
			return err
		}
		return withOutput(cmd, Cfg.GetString("OutputFile"), func(w io.Writer) error {
			return Parse(w, m, units, logrus.StandardLogger())
		})
	},
	DisableAutoGenTag: true,
}

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Evaluate rate constants.",
	Long: `rates evaluates the rate constants of the reactions in Mechanism at the
given Temperatures and Pressures and writes them as CSV to OutputFile.
Duplicate reactions are summed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConditions(Cfg)
		if err != nil {
			return err
		}
		m, err := readMechanism(Cfg.GetString("Mechanism"), true)
		if err != nil {
			return err
		}
		filter, err := checkReaction(Cfg.GetString("Reaction"))
		if err != nil {
			return err
		}
		return withOutput(cmd, Cfg.GetString("OutputFile"), func(w io.Writer) error {
			return Rates(w, m, c, filter, expand(Cfg.GetString("PlotFile")), logrus.StandardLogger())
		})
	},
	DisableAutoGenTag: true,
}

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Refit rate constants to Arrhenius expressions.",
	Long: `fit evaluates the rate constants of the reactions in Mechanism at the given
Temperatures and Pressures, fits them to single- or double-Arrhenius
expressions at each pressure, and writes the results as PLOG reactions
to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return synthesize(cmd, false)
	},
	DisableAutoGenTag: true,
}

var reverseCmd = &cobra.Command{
	Use:   "reverse",
	Short: "Reverse reactions.",
	Long: `reverse evaluates the rate constants of the reactions in Mechanism,
divides them by equilibrium constants calculated from the mechanism's
thermo data, fits the results to single- or double-Arrhenius expressions
at each pressure, and writes the reversed reactions as PLOG reactions to
OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return synthesize(cmd, true)
	},
	DisableAutoGenTag: true,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two mechanisms.",
	Long: `compare evaluates the rate constants of each reaction in Mechanism and of
the matching reaction in MechanismB, reversing MechanismB reactions that
are written in the opposite direction, and writes both as CSV to
OutputFile. Reactions that match more than one MechanismB reaction are
reported as ambiguous unless the matches are all duplicates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConditions(Cfg)
		if err != nil {
			return err
		}
		a, err := readMechanism(Cfg.GetString("Mechanism"), true)
		if err != nil {
			return err
		}
		b, err := readMechanism(Cfg.GetString("MechanismB"), true)
		if err != nil {
			return err
		}
		filter, err := checkReaction(Cfg.GetString("Reaction"))
		if err != nil {
			return err
		}
		speciesA, err := loadSpeciesTable(cmd, Cfg.GetString("SpeciesTable"))
		if err != nil {
			return err
		}
		speciesB, err := loadSpeciesTable(cmd, Cfg.GetString("SpeciesTableB"))
		if err != nil {
			return err
		}
		return withOutput(cmd, Cfg.GetString("OutputFile"), func(w io.Writer) error {
			return Compare(w, a, b, speciesA, speciesB, c, filter, expand(Cfg.GetString("PlotFile")), logrus.StandardLogger())
		})
	},
	DisableAutoGenTag: true,
}

func synthesize(cmd *cobra.Command, reverse bool) error {
	c, err := loadConditions(Cfg)
	if err != nil {
		return err
	}
	units, err := checkEaUnits(Cfg.GetString("EaUnits"))
	if err != nil {
		return err
	}
	m, err := readMechanism(Cfg.GetString("Mechanism"), true)
	if err != nil {
		return err
	}
	filter, err := checkReaction(Cfg.GetString("Reaction"))
	if err != nil {
		return err
	}
	f := fitter(Cfg)
	return withOutput(cmd, Cfg.GetString("OutputFile"), func(w io.Writer) error {
		if reverse {
			return ReverseMechanism(w, m, c, filter, f, units, logrus.StandardLogger())
		}
		return FitMechanism(w, m, c, filter, f, units, logrus.StandardLogger())
	})
}

// expand expands environment variables in s.
func expand(s string) string {
	return strings.TrimSpace(os.ExpandEnv(s))
}
