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

package kinutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/kinetics"
	"github.com/spatialmodel/kinetics/science/equilibrium"
	"github.com/spatialmodel/kinetics/science/fit"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// Conditions holds the temperature and pressure grid that rate constants
// are evaluated on.
type Conditions struct {
	// Temperatures [K].
	Temperatures []float64

	// Pressures [atm].
	Pressures []float64
}

// ReadConditions reads a TOML file holding Temperatures and Pressures
// arrays.
func ReadConditions(fileName string) (*Conditions, error) {
	c := new(Conditions)
	if _, err := toml.DecodeFile(os.ExpandEnv(fileName), c); err != nil {
		return nil, fmt.Errorf("kinetics: problem reading conditions file: %v", err)
	}
	return c, c.check()
}

func (c *Conditions) check() error {
	if len(c.Temperatures) == 0 {
		return fmt.Errorf("kinetics: no temperatures specified. Please fill in " +
			"the Temperatures configuration and try again")
	}
	for _, T := range c.Temperatures {
		if !(T > 0) {
			return fmt.Errorf("kinetics: temperatures must be positive, but %g was given", T)
		}
	}
	for _, p := range c.Pressures {
		if !(p > 0) {
			return fmt.Errorf("kinetics: pressures must be positive, but %g was given", p)
		}
	}
	return nil
}

// loadConditions returns the Conditions file if one is configured, and
// otherwise the Temperatures and Pressures options.
func loadConditions(cfg *viper.Viper) (*Conditions, error) {
	if f := cfg.GetString("Conditions"); f != "" {
		return ReadConditions(f)
	}
	temps, err := GetFloat64Slice("Temperatures", cfg)
	if err != nil {
		return nil, err
	}
	pressures, err := GetFloat64Slice("Pressures", cfg)
	if err != nil {
		return nil, err
	}
	c := &Conditions{Temperatures: temps, Pressures: pressures}
	return c, c.check()
}

// GetFloat64Slice returns a []float64 from a viper configuration,
// accounting for the fact that it might be a string like "[1,2,3]" if it
// was set from a command line argument.
func GetFloat64Slice(varName string, cfg *viper.Viper) ([]float64, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return nil, nil
	case []float64:
		return v, nil
	case []interface{}:
		o := make([]float64, len(v))
		for j, val := range v {
			f, err := cast.ToFloat64E(val)
			if err != nil {
				return nil, fmt.Errorf("kinetics: %s: %v", varName, err)
			}
			o[j] = f
		}
		return o, nil
	case string:
		s := strings.TrimSpace(v)
		s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		parts := strings.Split(s, ",")
		o := make([]float64, len(parts))
		for j, p := range parts {
			f, err := cast.ToFloat64E(strings.TrimSpace(p))
			if err != nil {
				return nil, fmt.Errorf("kinetics: %s: %v", varName, err)
			}
			o[j] = f
		}
		return o, nil
	default:
		return nil, fmt.Errorf("kinetics: invalid type for %s: %#v", varName, i)
	}
}

func checkEaUnits(u string) (kinetics.Units, error) {
	e, err := kinetics.ParseEnergyUnits(os.ExpandEnv(u))
	if err != nil {
		return kinetics.Units{}, fmt.Errorf("the EaUnits variable needs to be set to "+
			"CAL/MOLE, KCAL/MOLE, JOULES/MOLE, KJOULES/MOLE, or KELVINS, but is currently set to `%s`", u)
	}
	return kinetics.Units{Energy: e, Basis: kinetics.Moles}, nil
}

// checkReaction parses the Reaction option into a reaction key. An empty
// key matches every reaction.
func checkReaction(eq string) (string, error) {
	eq = strings.TrimSpace(eq)
	if eq == "" {
		return "", nil
	}
	reactants, products, err := kinetics.ParseEquation(eq)
	if err != nil {
		return "", fmt.Errorf("kinetics: invalid Reaction %q: %v", eq, err)
	}
	return kinetics.ReactionKey(reactants, products), nil
}

// selected returns the reactions in m that match the key. An empty key
// selects all reactions.
func selected(m *kinetics.Mechanism, key string) ([]*kinetics.ReactionRecord, error) {
	if key == "" {
		return m.Reactions, nil
	}
	var o []*kinetics.ReactionRecord
	for _, r := range m.Reactions {
		if r.Key() == key {
			o = append(o, r)
		}
	}
	if len(o) == 0 {
		return nil, fmt.Errorf("kinetics: no reaction in the mechanism matches the Reaction option")
	}
	return o, nil
}

// readMechanism reads and parses the mechanism file. If kinetics is true,
// the file must contain a REACTIONS block.
func readMechanism(fileName string, kin bool) (*kinetics.Mechanism, error) {
	if fileName == "" {
		return nil, fmt.Errorf("kinetics: you need to specify a mechanism file " +
			"(for example: Mechanism=\"chem.inp\")")
	}
	f, err := os.Open(os.ExpandEnv(fileName))
	if err != nil {
		return nil, fmt.Errorf("kinetics: opening mechanism: %v", err)
	}
	defer f.Close()
	p := &kinetics.Parser{Kinetics: kin}
	return p.Parse(f)
}

func loadSpeciesTable(cmd *cobra.Command, fileName string) (equilibrium.SpeciesTable, error) {
	if fileName == "" {
		return nil, nil
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return equilibrium.LoadSpeciesTable(ctx, os.ExpandEnv(fileName))
}

func fitter(cfg *viper.Viper) *fit.Fitter {
	return &fit.Fitter{
		Tmin:   cfg.GetFloat64("Tmin"),
		Tmax:   cfg.GetFloat64("Tmax"),
		Double: cfg.GetBool("DoubleArrhenius"),
	}
}

// withOutput calls f with the output file, or with the command's output
// stream if fileName is empty.
func withOutput(cmd *cobra.Command, fileName string, f func(w io.Writer) error) error {
	fileName = os.ExpandEnv(fileName)
	if fileName == "" {
		return f(cmd.OutOrStdout())
	}
	if _, err := os.Stat(filepath.Dir(fileName)); err != nil {
		return fmt.Errorf("kinetics: the OutputFile directory doesn't exist: %v", err)
	}
	w, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("kinetics: creating OutputFile: %v", err)
	}
	if err := f(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
