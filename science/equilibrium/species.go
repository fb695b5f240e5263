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

package equilibrium

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/spatialmodel/kinetics"
	"github.com/tealeg/xlsx"
)

// Species describes one row of a species table.
type Species struct {
	// Name is the name of the species within a mechanism.
	Name string

	// Identifier is a mechanism-independent structural identifier,
	// such as a SMILES string.
	Identifier string

	Multiplicity, Charge kinetics.Value
}

// Key returns the string that identifies the species across
// mechanisms: its identifier, multiplicity and charge.
func (s Species) Key() string {
	k := s.Identifier
	if s.Multiplicity.OK() || s.Charge.OK() {
		k += "/" + s.Multiplicity.String() + "/" + s.Charge.String()
	}
	return k
}

// SpeciesTable maps mechanism species names to identifiers.
type SpeciesTable map[string]Species

// Identify returns the identifier key for the species with the given
// name. Names that are not in the table are returned unchanged. A nil
// SpeciesTable identifies every species by its name.
func (t SpeciesTable) Identify(name string) string {
	if s, ok := t[name]; ok {
		return s.Key()
	}
	return name
}

func (t SpeciesTable) identifyAll(names []string) []string {
	o := make([]string, len(names))
	for i, n := range names {
		o[i] = t.Identify(n)
	}
	return o
}

// identifierColumns are the accepted headings for the identifier
// column, in order of preference.
var identifierColumns = []string{"identifier", "smiles", "inchi", "id"}

// ReadSpeciesTable reads a species table in CSV format. The first row
// holds column headings, which are matched case-insensitively after
// trimming whitespace. A "name" column and an identifier column
// ("identifier", "smiles", "inchi" or "id") are required;
// "multiplicity" and "charge" columns are optional.
func ReadSpeciesTable(r io.Reader) (SpeciesTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	lines, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("equilibrium: reading species table: %v", err)
	}
	return speciesFromRows(lines)
}

func speciesFromRows(rows [][]string) (SpeciesTable, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("equilibrium: species table is empty")
	}
	cols := make(map[string]int)
	for i, h := range rows[0] {
		h = strings.ToLower(strings.TrimSpace(h))
		if _, ok := cols[h]; !ok {
			cols[h] = i
		}
	}
	nameCol, ok := cols["name"]
	if !ok {
		return nil, fmt.Errorf("equilibrium: species table has no name column")
	}
	idCol := -1
	for _, c := range identifierColumns {
		if i, ok := cols[c]; ok {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("equilibrium: species table has no identifier column (want one of %v)", identifierColumns)
	}
	multCol, hasMult := cols["multiplicity"]
	chargeCol, hasCharge := cols["charge"]

	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	t := make(SpeciesTable)
	for i, row := range rows[1:] {
		s := Species{Name: cell(row, nameCol), Identifier: cell(row, idCol)}
		if s.Name == "" {
			continue
		}
		if s.Identifier == "" {
			return nil, fmt.Errorf("equilibrium: species table row %d (%s) has no identifier", i+2, s.Name)
		}
		var err error
		if hasMult {
			if s.Multiplicity, err = kinetics.ParseValue(cell(row, multCol)); err != nil {
				return nil, fmt.Errorf("equilibrium: species table row %d multiplicity: %v", i+2, err)
			}
		}
		if hasCharge {
			if s.Charge, err = kinetics.ParseValue(cell(row, chargeCol)); err != nil {
				return nil, fmt.Errorf("equilibrium: species table row %d charge: %v", i+2, err)
			}
		}
		t[s.Name] = s
	}
	return t, nil
}

// readXLSXSpeciesTable reads a species table from the first sheet
// of a Microsoft Excel file.
func readXLSXSpeciesTable(fileName string) (SpeciesTable, error) {
	f, err := xlsx.OpenFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("equilibrium: opening xlsx file: %v", err)
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("equilibrium: %s has no sheets", fileName)
	}
	var rows [][]string
	for _, r := range f.Sheets[0].Rows {
		row := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			row[i] = c.Value
		}
		rows = append(rows, row)
	}
	return speciesFromRows(rows)
}

var (
	tableCache     *requestcache.Cache
	tableCacheOnce sync.Once
)

// LoadSpeciesTable reads the species table in fileName, which may be
// a CSV file or, if it has an .xlsx extension, a Microsoft Excel
// file. Tables are cached so that each file is only read once.
func LoadSpeciesTable(ctx context.Context, fileName string) (SpeciesTable, error) {
	tableCacheOnce.Do(func() {
		tableCache = requestcache.NewCache(func(ctx context.Context, req interface{}) (interface{}, error) {
			fileName := req.(string)
			if strings.EqualFold(filepath.Ext(fileName), ".xlsx") {
				return readXLSXSpeciesTable(fileName)
			}
			f, err := os.Open(fileName)
			if err != nil {
				return nil, fmt.Errorf("equilibrium: opening species table: %v", err)
			}
			defer f.Close()
			return ReadSpeciesTable(f)
		}, runtime.GOMAXPROCS(-1), requestcache.Deduplicate(), requestcache.Memory(100))
	})
	r := tableCache.NewRequest(ctx, fileName, fileName)
	t, err := r.Result()
	if err != nil {
		return nil, err
	}
	return t.(SpeciesTable), nil
}
