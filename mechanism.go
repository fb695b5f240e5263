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

package kinetics

import (
	"fmt"
	"io"
	"io/ioutil"

	"github.com/sirupsen/logrus"
)

// ParseError reports a failure to parse one block or record of a
// mechanism.
type ParseError struct {
	// Block is the block being parsed, e.g. "REACTIONS".
	Block string

	// Record is the 1-based index of the record within the block, or
	// 0 if the failure concerns the block as a whole.
	Record int

	// Text is the text of the offending record.
	Text string

	Err error
}

func (e *ParseError) Error() string {
	if e.Record == 0 {
		return fmt.Sprintf("kinetics: %s block: %v", e.Block, e.Err)
	}
	return fmt.Sprintf("kinetics: %s record %d (%q): %v", e.Block, e.Record, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Mechanism holds the parsed contents of a mechanism file.
type Mechanism struct {
	*Document

	// Units are the declared units of the REACTIONS block. The
	// parameters in Reactions have been normalized from these units.
	Units Units

	Reactions []*ReactionRecord
	Thermo    []*ThermoRecord
}

// ThermoByName returns the thermo records indexed by species name.
func (m *Mechanism) ThermoByName() map[string]*ThermoRecord {
	o := make(map[string]*ThermoRecord, len(m.Thermo))
	for _, t := range m.Thermo {
		if _, ok := o[t.Name]; ok {
			continue // CHEMKIN uses the first definition.
		}
		o[t.Name] = t
	}
	return o
}

// Parser reads mechanism files.
type Parser struct {
	// Kinetics specifies that the files are expected to contain
	// reactions. If true, a missing or empty REACTIONS block is an error.
	Kinetics bool

	// Log receives warnings, such as unrecognized unit keywords.
	Log logrus.FieldLogger
}

// ParseMechanism reads a mechanism that is expected to contain
// reactions, logging warnings to the standard logger.
func ParseMechanism(r io.Reader) (*Mechanism, error) {
	p := &Parser{Kinetics: true, Log: logrus.StandardLogger()}
	return p.Parse(r)
}

// Parse reads a mechanism from r.
func (p *Parser) Parse(r io.Reader) (*Mechanism, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("kinetics: reading mechanism: %v", err)
	}
	return p.ParseString(string(b))
}

// ParseString parses mechanism text.
func (p *Parser) ParseString(text string) (*Mechanism, error) {
	m := &Mechanism{Document: NewDocument(text)}
	if err := p.parseReactions(m); err != nil {
		return nil, err
	}
	if err := p.parseThermo(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *Parser) log() logrus.FieldLogger {
	if p.Log == nil {
		return logrus.StandardLogger()
	}
	return p.Log
}

func (p *Parser) parseReactions(m *Mechanism) error {
	if m.Document.Reactions == "" {
		if p.Kinetics {
			return &ParseError{Block: "REACTIONS", Err: fmt.Errorf("block is missing or empty")}
		}
		return nil
	}
	u, unrecognized := ParseUnits(UnitsLine(m.Document.Reactions))
	if len(unrecognized) > 0 {
		p.log().WithFields(logrus.Fields{
			"units":   unrecognized,
			"default": u.String(),
		}).Warn("kinetics: unrecognized REACTIONS units; using defaults")
	}
	m.Units = u
	records := SplitReactionRecords(m.Document.Reactions)
	if len(records) == 0 && p.Kinetics {
		return &ParseError{Block: "REACTIONS", Err: fmt.Errorf("block contains no reactions")}
	}
	for i, rec := range records {
		r, err := ParseReactionRecord(rec)
		if err != nil {
			return &ParseError{Block: "REACTIONS", Record: i + 1, Text: rec, Err: err}
		}
		if err := r.Normalize(u); err != nil {
			return &ParseError{Block: "REACTIONS", Record: i + 1, Text: rec, Err: err}
		}
		m.Reactions = append(m.Reactions, r)
	}
	return nil
}

func (p *Parser) parseThermo(m *Mechanism) error {
	if m.Document.Thermo == "" {
		return nil
	}
	defaults := ThermoDefaults(m.Document.Thermo)
	for i, rec := range SplitThermoRecords(m.Document.Thermo) {
		t, err := ParseThermoRecord(rec, defaults)
		if err != nil {
			return &ParseError{Block: "THERMO", Record: i + 1, Text: rec, Err: err}
		}
		m.Thermo = append(m.Thermo, t)
	}
	return nil
}
