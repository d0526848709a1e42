package encoding

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"assocreport/domain/core"
	"assocreport/domain/dataset"
)

// Order controls how distinct categories are numbered
type Order string

const (
	OrderSorted    Order = "sorted"     // lexical, like a crosstab
	OrderFirstSeen Order = "first_seen" // order of first occurrence
)

// ParseOrder validates an order name; empty means sorted
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case "", OrderSorted:
		return OrderSorted, nil
	case OrderFirstSeen:
		return OrderFirstSeen, nil
	}
	return "", fmt.Errorf("unknown category order %q (want %s or %s)", s, OrderSorted, OrderFirstSeen)
}

// LabelEncoder is a bidirectional mapping between observed categories and 0..k-1.
// It is built once and never changes afterwards.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// NewLabelEncoder builds the mapping from the distinct values in values
func NewLabelEncoder(values []string, order Order) *LabelEncoder {
	index := make(map[string]int)
	classes := make([]string, 0)
	for _, v := range values {
		if _, ok := index[v]; ok {
			continue
		}
		index[v] = len(classes)
		classes = append(classes, v)
	}

	if order != OrderFirstSeen {
		sort.Strings(classes)
		for i, c := range classes {
			index[c] = i
		}
	}

	return &LabelEncoder{classes: classes, index: index}
}

// Len returns the number of classes
func (e *LabelEncoder) Len() int {
	return len(e.classes)
}

// Classes returns a copy of the class labels in code order
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

// Encode returns the code for a label
func (e *LabelEncoder) Encode(label string) (int, bool) {
	code, ok := e.index[label]
	return code, ok
}

// EncodeAll encodes every value; an unseen label is an error.
func (e *LabelEncoder) EncodeAll(values []string) ([]int, error) {
	codes := make([]int, len(values))
	for i, v := range values {
		code, ok := e.index[v]
		if !ok {
			return nil, fmt.Errorf("label %q at position %d was not seen when the encoder was built", v, i)
		}
		codes[i] = code
	}
	return codes, nil
}

// Decode returns the label for a code
func (e *LabelEncoder) Decode(code int) (string, bool) {
	if code < 0 || code >= len(e.classes) {
		return "", false
	}
	return e.classes[code], true
}

// EncodedDataset is a dataset with every column label-encoded
type EncodedDataset struct {
	Columns  []string
	Encoders map[string]*LabelEncoder
	Rows     [][]int
}

// EncodeDataset label-encodes every column of ds
func EncodeDataset(ds *dataset.Dataset, order Order) (*EncodedDataset, error) {
	cols := ds.Columns()
	out := &EncodedDataset{
		Columns:  cols,
		Encoders: make(map[string]*LabelEncoder, len(cols)),
		Rows:     make([][]int, ds.Len()),
	}
	for i := range out.Rows {
		out.Rows[i] = make([]int, len(cols))
	}

	for j, col := range cols {
		values, err := ds.Column(core.VariableKey(col))
		if err != nil {
			return nil, err
		}
		enc := NewLabelEncoder(values, order)
		codes, err := enc.EncodeAll(values)
		if err != nil {
			return nil, err
		}
		for i, code := range codes {
			out.Rows[i][j] = code
		}
		out.Encoders[col] = enc
	}

	return out, nil
}

// WriteCSV writes the header followed by the integer rows
func (e *EncodedDataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(e.Columns); err != nil {
		return err
	}
	record := make([]string, len(e.Columns))
	for _, row := range e.Rows {
		for j, code := range row {
			record[j] = strconv.Itoa(code)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
