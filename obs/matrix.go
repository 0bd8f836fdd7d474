package obs

import (
	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/serializer/archive"
	"github.com/roboware/serialkit/serializer/extstore"
)

// Matrix is a dense row-major float32 matrix, used for range images.
type Matrix struct {
	Rows, Cols uint32
	Data       []float32
}

// NewMatrix creates a zero filled matrix.
func NewMatrix(rows, cols uint32) Matrix {
	return Matrix{
		Rows: rows,
		Cols: cols,
		Data: make([]float32, int(rows)*int(cols)),
	}
}

// At returns the element in row r and column c.
func (m *Matrix) At(r, c uint32) float32 {
	return m.Data[int(r)*int(m.Cols)+int(c)]
}

// Set sets the element in row r and column c.
func (m *Matrix) Set(r, c uint32, value float32) {
	m.Data[int(r)*int(m.Cols)+int(c)] = value
}

// Empty reports whether the matrix has no elements.
func (m Matrix) Empty() bool {
	return m.Rows == 0 || m.Cols == 0
}

// Sub returns a copy of the rows [r1, r2) and columns [c1, c2).
func (m *Matrix) Sub(r1, r2, c1, c2 uint32) Matrix {
	sub := NewMatrix(r2-r1, c2-c1)
	for r := r1; r < r2; r++ {
		copy(sub.Data[int(r-r1)*int(sub.Cols):], m.Data[int(r)*int(m.Cols)+int(c1):int(r)*int(m.Cols)+int(c2)])
	}

	return sub
}

func (m *Matrix) SerializeVersion() uint8 { return 0 }

func (m *Matrix) SerializeTo(a *archive.Archive) error {
	return writeMatrix(a, *m)
}

func (m *Matrix) SerializeFrom(a *archive.Archive, version uint8) error {
	if version != 0 {
		return archive.UnsupportedVersion(a, m, version)
	}

	matrix, err := readMatrix(a)
	if err != nil {
		return err
	}
	*m = matrix

	return nil
}

func writeMatrix(a *archive.Archive, m Matrix) error {
	if int(m.Rows)*int(m.Cols) != len(m.Data) {
		return ierrors.Errorf("matrix of %dx%d holds %d elements", m.Rows, m.Cols, len(m.Data))
	}

	if err := archive.Write(a, m.Rows); err != nil {
		return err
	}
	if err := archive.Write(a, m.Cols); err != nil {
		return err
	}

	return archive.WriteSlice(a, m.Data)
}

func readMatrix(a *archive.Archive) (Matrix, error) {
	var m Matrix
	if err := archive.Read(a, &m.Rows); err != nil {
		return m, err
	}
	if err := archive.Read(a, &m.Cols); err != nil {
		return m, err
	}
	if err := archive.ReadSlice(a, &m.Data); err != nil {
		return m, err
	}

	if int(m.Rows)*int(m.Cols) != len(m.Data) {
		return m, ierrors.Errorf("matrix of %dx%d holds %d elements", m.Rows, m.Cols, len(m.Data))
	}

	return m, nil
}

var matrixCodec = extstore.Codec[Matrix]{
	Write: writeMatrix,
	Read:  readMatrix,
}
