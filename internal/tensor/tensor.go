// Package tensor provides the typed float32/int64 tensor container the
// inference core moves in and out of ONNX Runtime sessions.
package tensor

import (
	"errors"
	"fmt"
	"math"
)

type DType string

const (
	Float32 DType = "float32"
	Int64   DType = "int64"
)

// Tensor is a typed, shaped numeric buffer. The zero value is not valid;
// construct with New or Zero.
type Tensor struct {
	dtype DType
	shape []int64
	data  any
}

// New builds a Tensor from a concrete float32 or int64 slice and shape,
// validating that shape's element count matches len(data).
func New[T ~int64 | ~float32](data []T, shape []int64) (*Tensor, error) {
	dtype, err := dtypeOf(data)
	if err != nil {
		return nil, err
	}

	if err := validateShape(shape, len(data)); err != nil {
		return nil, err
	}

	t := &Tensor{dtype: dtype, shape: append([]int64(nil), shape...)}

	switch dtype {
	case Float32:
		out := make([]float32, len(data))
		for i, v := range data {
			out[i] = float32(v)
		}

		t.data = out
	case Int64:
		out := make([]int64, len(data))
		for i, v := range data {
			out[i] = int64(v)
		}

		t.data = out
	}

	return t, nil
}

// Zero builds a zero-filled tensor of the given dtype and shape.
func Zero(dtype DType, shape []int64) (*Tensor, error) {
	count, err := elementCount(shape)
	if err != nil {
		return nil, err
	}

	switch dtype {
	case Float32:
		return New(make([]float32, count), shape)
	case Int64:
		return New(make([]int64, count), shape)
	default:
		return nil, fmt.Errorf("unsupported tensor dtype %q", dtype)
	}
}

func (t *Tensor) DType() DType    { return t.dtype }
func (t *Tensor) Shape() []int64  { return append([]int64(nil), t.shape...) }
func (t *Tensor) Len() int        { n, _ := elementCount(t.shape); return n }

// Float32Data returns a defensive copy of the backing float32 slice, or an
// error if the tensor does not hold float32 data.
func (t *Tensor) Float32Data() ([]float32, error) {
	v, ok := t.data.([]float32)
	if !ok {
		return nil, fmt.Errorf("tensor dtype is %s, not float32", t.dtype)
	}

	return append([]float32(nil), v...), nil
}

// Int64Data returns a defensive copy of the backing int64 slice, or an
// error if the tensor does not hold int64 data.
func (t *Tensor) Int64Data() ([]int64, error) {
	v, ok := t.data.([]int64)
	if !ok {
		return nil, fmt.Errorf("tensor dtype is %s, not int64", t.dtype)
	}

	return append([]int64(nil), v...), nil
}

func dtypeOf[T ~int64 | ~float32](_ []T) (DType, error) {
	var zero T
	switch any(zero).(type) {
	case int64:
		return Int64, nil
	case float32:
		return Float32, nil
	default:
		return "", fmt.Errorf("unsupported tensor element type %T", zero)
	}
}

func validateShape(shape []int64, dataLen int) error {
	count, err := elementCount(shape)
	if err != nil {
		return err
	}

	if count != dataLen {
		return fmt.Errorf("shape %v expects %d elements, got %d", shape, count, dataLen)
	}

	return nil
}

func elementCount(shape []int64) (int, error) {
	if len(shape) == 0 {
		return 0, errors.New("shape must have at least one dimension")
	}

	count := int64(1)
	for i, dim := range shape {
		if dim < 1 {
			return 0, fmt.Errorf("shape[%d]=%d is not positive", i, dim)
		}

		if count > math.MaxInt64/dim {
			return 0, fmt.Errorf("shape %v overflows element count", shape)
		}

		count *= dim
	}

	if count > int64(math.MaxInt) {
		return 0, fmt.Errorf("shape %v exceeds platform int capacity", shape)
	}

	return int(count), nil
}
