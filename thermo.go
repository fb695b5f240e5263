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
	"strings"
)

// ThermoRecord holds NASA 7-coefficient polynomial data for one species.
type ThermoRecord struct {
	Name string

	// Tlow, Thigh and Tcommon are the temperature breakpoints [K].
	Tlow, Thigh, Tcommon float64

	// Low holds the coefficients valid on [Tlow, Tcommon].
	Low [7]float64

	// High holds the coefficients valid on [Tcommon, Thigh].
	High [7]float64

	// H298 is the optional fifteenth coefficient, H(298.15 K)/R.
	H298 Value
}

// DefaultTemperatures are the (Tlow, Tcommon, Thigh) used for a
// THERMO block that does not declare its own.
var DefaultTemperatures = [3]float64{300, 1000, 5000}

// isNumericLine returns whether line only holds numbers and operators.
func isNumericLine(line string) bool {
	for _, r := range line {
		if !strings.ContainsRune("0123456789.+-eEdD \t", r) {
			return false
		}
	}
	return true
}

func isThermoHeader(line string) bool {
	if isNumericLine(line) {
		return false
	}
	f := strings.Fields(line)
	return len(f) > 1 && f[len(f)-1] == "1"
}

// SplitThermoRecords groups the lines of a THERMO block into four-line
// species records. Each record starts with a header line that is not
// purely numeric and ends with the "1" continuation marker. Lines that
// are not part of a record are ignored.
func SplitThermoRecords(block string) []string {
	lines := strings.Split(block, "\n")
	var records []string
	for i := 0; i < len(lines); i++ {
		if !isThermoHeader(lines[i]) {
			continue
		}
		end := i + 4
		if end > len(lines) {
			end = len(lines)
		}
		records = append(records, strings.Join(lines[i:end], "\n"))
		i = end - 1
	}
	return records
}

// ThermoDefaults reads the default temperature line that may follow
// "THERMO ALL". It returns DefaultTemperatures if there is none.
func ThermoDefaults(block string) [3]float64 {
	for _, line := range strings.Split(block, "\n") {
		if strings.EqualFold(strings.TrimSpace(line), "ALL") {
			continue
		}
		if !isNumericLine(line) {
			break
		}
		v, err := parseFloats(strings.Fields(line))
		if err != nil || len(v) != 3 {
			break
		}
		return [3]float64{v[0], v[1], v[2]}
	}
	return DefaultTemperatures
}

// ParseThermoRecord parses one record as returned by SplitThermoRecords.
// defaults supplies (Tlow, Tcommon, Thigh) for headers that omit their
// common temperature. The record must hold 14 or 15 coefficients.
func ParseThermoRecord(rec string, defaults [3]float64) (*ThermoRecord, error) {
	lines := strings.Split(rec, "\n")
	header := lines[0]
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty thermo record")
	}
	t := &ThermoRecord{Name: fields[0]}
	if err := t.parseTemperatures(header, defaults); err != nil {
		return nil, fmt.Errorf("species %s: %v", t.Name, err)
	}

	var tokens []string
	for _, l := range lines[1:] {
		tokens = append(tokens, scanDecimalNumbers(l)...)
	}
	if len(tokens) != 14 && len(tokens) != 15 {
		return nil, fmt.Errorf("species %s: thermo record should have 14 or 15 coefficients but has %d",
			t.Name, len(tokens))
	}
	c, err := parseFloats(tokens)
	if err != nil {
		return nil, fmt.Errorf("species %s: %v", t.Name, err)
	}
	copy(t.High[:], c[0:7])
	copy(t.Low[:], c[7:14])
	if len(c) == 15 {
		t.H298 = Of(c[14])
	}
	return t, nil
}

// parseTemperatures reads the temperature breakpoints from a thermo
// header. The standard fixed columns are tried first; otherwise the
// last decimal numbers on the line are used.
func (t *ThermoRecord) parseTemperatures(header string, defaults [3]float64) error {
	if len(header) >= 73 {
		v, err := parseFloats([]string{header[45:55], header[55:65], header[65:73]})
		if err == nil {
			t.Tlow, t.Thigh, t.Tcommon = v[0], v[1], v[2]
			return t.checkRange()
		}
	}
	nums := scanDecimalNumbers(header[len(t.Name):])
	switch {
	case len(nums) >= 3:
		nums = nums[len(nums)-3:]
	case len(nums) == 2:
		nums = append(nums, fmt.Sprint(defaults[1]))
	default:
		return fmt.Errorf("thermo header %q should have 3 temperatures", header)
	}
	v, err := parseFloats(nums)
	if err != nil {
		return err
	}
	t.Tlow, t.Thigh, t.Tcommon = v[0], v[1], v[2]
	return t.checkRange()
}

func (t *ThermoRecord) checkRange() error {
	if t.Tlow >= t.Thigh || t.Tcommon < t.Tlow || t.Tcommon > t.Thigh {
		return fmt.Errorf("invalid temperature range %g-%g-%g", t.Tlow, t.Tcommon, t.Thigh)
	}
	return nil
}

// scanDecimalNumbers returns the numbers in s that contain a decimal
// point, such as the fixed-width coefficients of a thermo record.
// Adjacent numbers need not be separated by whitespace
// ("1.0E+00-2.0E-03"). Integers, such as the line-number markers
// at the end of thermo lines, are skipped.
func scanDecimalNumbers(s string) []string {
	var o []string
	i := 0
	for i < len(s) {
		j, hasPoint := scanNumber(s, i)
		if j == i {
			i++
			continue
		}
		if hasPoint {
			o = append(o, s[i:j])
		}
		i = j
	}
	return o
}

// scanNumber returns the end of the number starting at s[i], or i if
// there is no number there.
func scanNumber(s string, i int) (end int, hasPoint bool) {
	j := i
	if j < len(s) && (s[j] == '+' || s[j] == '-') {
		j++
	}
	digits := 0
	for j < len(s) && isDigit(s[j]) {
		j++
		digits++
	}
	if j < len(s) && s[j] == '.' {
		hasPoint = true
		j++
		for j < len(s) && isDigit(s[j]) {
			j++
			digits++
		}
	}
	if digits == 0 {
		return i, false
	}
	if j < len(s) && strings.IndexByte("eEdD", s[j]) >= 0 {
		k := j + 1
		if k < len(s) && (s[k] == '+' || s[k] == '-') {
			k++
		}
		e := k
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > e {
			j = k
		}
	}
	return j, hasPoint
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
