package indicator

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"indicatorlab/domain/core"
)

// frame is a labeled dense matrix. R and C are the row and column label types.
type frame[R, C comparable] struct {
	rows   []R
	cols   []C
	rowIdx map[R]int
	colIdx map[C]int
	data   *mat.Dense
}

func newFrame[R, C comparable](rows []R, cols []C, data *mat.Dense) (frame[R, C], error) {
	if data == nil {
		return frame[R, C]{}, fmt.Errorf("%w: no values", ErrShape)
	}
	r, c := data.Dims()
	if r != len(rows) || c != len(cols) {
		return frame[R, C]{}, fmt.Errorf("%w: %d x %d labels for %d x %d values", ErrShape, len(rows), len(cols), r, c)
	}
	rowIdx, err := indexLabels(rows)
	if err != nil {
		return frame[R, C]{}, err
	}
	colIdx, err := indexLabels(cols)
	if err != nil {
		return frame[R, C]{}, err
	}
	return frame[R, C]{
		rows:   append([]R(nil), rows...),
		cols:   append([]C(nil), cols...),
		rowIdx: rowIdx,
		colIdx: colIdx,
		data:   data,
	}, nil
}

func indexLabels[L comparable](labels []L) (map[L]int, error) {
	idx := make(map[L]int, len(labels))
	for i, label := range labels {
		if _, dup := idx[label]; dup {
			return nil, labelError(ErrDuplicateLabel, label)
		}
		idx[label] = i
	}
	return idx, nil
}

// Dims returns the number of rows and columns.
func (f frame[R, C]) Dims() (r, c int) {
	return len(f.rows), len(f.cols)
}

// At returns the value at row i, column j. NaN is a missing value.
func (f frame[R, C]) At(i, j int) float64 {
	return f.data.At(i, j)
}

// RowLabels renders the row labels as text.
func (f frame[R, C]) RowLabels() []string {
	return renderLabels(f.rows)
}

// ColumnLabels renders the column labels as text.
func (f frame[R, C]) ColumnLabels() []string {
	return renderLabels(f.cols)
}

// Fingerprint hashes labels and the exact bit pattern of every value, so two
// tables with the same fingerprint are bit-identical.
func (f frame[R, C]) Fingerprint() core.Hash {
	r, c := f.Dims()
	return fingerprint(f.RowLabels(), f.ColumnLabels(), r, c, f.At)
}

func (f frame[R, C]) row(label R) ([]float64, error) {
	i, ok := f.rowIdx[label]
	if !ok {
		return nil, labelError(ErrUnknownLabel, label)
	}
	return mat.Row(nil, i, f.data), nil
}

func (f frame[R, C]) col(label C) ([]float64, error) {
	j, ok := f.colIdx[label]
	if !ok {
		return nil, labelError(ErrUnknownLabel, label)
	}
	return mat.Col(nil, j, f.data), nil
}

func (f frame[R, C]) selectCols(labels []C) (frame[R, C], error) {
	if len(labels) == 0 {
		return frame[R, C]{}, fmt.Errorf("%w: empty selection", ErrShape)
	}
	data := mat.NewDense(len(f.rows), len(labels), nil)
	for k, label := range labels {
		j, ok := f.colIdx[label]
		if !ok {
			return frame[R, C]{}, labelError(ErrUnknownLabel, label)
		}
		data.SetCol(k, mat.Col(nil, j, f.data))
	}
	return newFrame(f.rows, labels, data)
}

func (f frame[R, C]) selectRows(labels []R) (frame[R, C], error) {
	if len(labels) == 0 {
		return frame[R, C]{}, fmt.Errorf("%w: empty selection", ErrShape)
	}
	data := mat.NewDense(len(labels), len(f.cols), nil)
	for k, label := range labels {
		i, ok := f.rowIdx[label]
		if !ok {
			return frame[R, C]{}, labelError(ErrUnknownLabel, label)
		}
		data.SetRow(k, mat.Row(nil, i, f.data))
	}
	return newFrame(labels, f.cols, data)
}

// transpose swaps rows and columns. The result owns a copy of the values.
func transpose[R, C comparable](f frame[R, C]) frame[C, R] {
	rowIdx := make(map[C]int, len(f.cols))
	for k, v := range f.colIdx {
		rowIdx[k] = v
	}
	colIdx := make(map[R]int, len(f.rows))
	for k, v := range f.rowIdx {
		colIdx[k] = v
	}
	return frame[C, R]{
		rows:   append([]C(nil), f.cols...),
		cols:   append([]R(nil), f.rows...),
		rowIdx: rowIdx,
		colIdx: colIdx,
		data:   mat.DenseCopyOf(f.data.T()),
	}
}

func renderLabels[L comparable](labels []L) []string {
	out := make([]string, len(labels))
	for i, label := range labels {
		switch v := any(label).(type) {
		case string:
			out[i] = v
		case int:
			out[i] = strconv.Itoa(v)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

func fingerprint(rows, cols []string, r, c int, at func(i, j int) float64) core.Hash {
	var buf bytes.Buffer
	for _, label := range rows {
		buf.WriteString(label)
		buf.WriteByte(0)
	}
	buf.WriteByte(1)
	for _, label := range cols {
		buf.WriteString(label)
		buf.WriteByte(0)
	}
	buf.WriteByte(1)
	var word [8]byte
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			binary.LittleEndian.PutUint64(word[:], math.Float64bits(at(i, j)))
			buf.Write(word[:])
		}
	}
	return core.NewHash(buf.Bytes())
}
