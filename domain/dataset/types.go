package dataset

import (
	"sort"

	"assocreport/domain/core"
)

// Record maps an attribute name to its categorical value.
type Record map[string]string

// Dataset is an ordered, read-only sequence of categorical records.
type Dataset struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	Records []Record `json:"records"`
}

// New creates a dataset. Headers may be nil, in which case Columns derives them from the records.
func New(name string, headers []string, records []Record) *Dataset {
	return &Dataset{Name: name, Headers: headers, Records: records}
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// IsEmpty reports whether the dataset has no records
func (d *Dataset) IsEmpty() bool {
	return d.Len() == 0
}

// Columns returns the header order, or the sorted union of record keys when no header was read.
func (d *Dataset) Columns() []string {
	if d == nil {
		return nil
	}
	if len(d.Headers) > 0 {
		return d.Headers
	}
	seen := make(map[string]struct{})
	for _, rec := range d.Records {
		for k := range rec {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// HasColumn reports whether name is a known column
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns() {
		if c == name {
			return true
		}
	}
	return false
}

// Column extracts one attribute across all records in order. Every record must carry the key.
func (d *Dataset) Column(varKey core.VariableKey) ([]string, error) {
	values := make([]string, d.Len())
	for i, rec := range d.Records {
		v, ok := rec[string(varKey)]
		if !ok {
			return nil, core.NewMissingAttributeError(varKey, i)
		}
		values[i] = v
	}
	return values, nil
}

// FillMissing returns a copy where empty values of the named attributes are replaced
// by their defaults. Attributes absent from a record stay absent, so a later Column
// still reports them as missing.
func (d *Dataset) FillMissing(defaults map[string]string) *Dataset {
	out := &Dataset{
		Name:    d.Name,
		Headers: append([]string(nil), d.Headers...),
		Records: make([]Record, len(d.Records)),
	}
	for i, rec := range d.Records {
		cp := make(Record, len(rec)+len(defaults))
		for k, v := range rec {
			cp[k] = v
		}
		for attr, def := range defaults {
			if v, ok := cp[attr]; ok && v == "" {
				cp[attr] = def
			}
		}
		out.Records[i] = cp
	}
	return out
}

// Rows returns the records as string rows in Columns order; absent keys become "".
func (d *Dataset) Rows() [][]string {
	cols := d.Columns()
	rows := make([][]string, d.Len())
	for i, rec := range d.Records {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = rec[c]
		}
		rows[i] = row
	}
	return rows
}

// Fingerprint identifies this snapshot of the data
func (d *Dataset) Fingerprint() core.SnapshotHash {
	return core.ComputeSnapshotHash(d.Columns(), d.Rows())
}

// Select returns a copy restricted to the given columns, in that order
func (d *Dataset) Select(columns []string) (*Dataset, error) {
	out := &Dataset{
		Name:    d.Name,
		Headers: append([]string(nil), columns...),
		Records: make([]Record, d.Len()),
	}
	for _, col := range columns {
		if !d.HasColumn(col) {
			return nil, core.NewMissingAttributeError(core.VariableKey(col), 0)
		}
	}
	for i, rec := range d.Records {
		cp := make(Record, len(columns))
		for _, col := range columns {
			v, ok := rec[col]
			if !ok {
				return nil, core.NewMissingAttributeError(core.VariableKey(col), i)
			}
			cp[col] = v
		}
		out.Records[i] = cp
	}
	return out, nil
}
