// File: pool/layout.go
// Author: momentics <momentics@gmail.com>
//
// Type layout checks and in-place placement of objects inside pages.

package pool

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/momentics/hioload-mempool/api"
	"github.com/pkg/errors"
)

// layout caches what the pool needs to know about a pooled type.
type layout struct {
	size      int
	align     int
	pointerOK bool
}

var layouts sync.Map // reflect.Type -> layout

func layoutOf[T any]() layout {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if l, ok := layouts.Load(rt); ok {
		return l.(layout)
	}
	var zero T
	l := layout{
		size:      int(unsafe.Sizeof(zero)),
		align:     int(unsafe.Alignof(zero)),
		pointerOK: pointerFree(rt),
	}
	layouts.Store(rt, l)
	return l
}

// pointerFree reports whether values of t hold no references the garbage
// collector would have to trace.
func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || pointerFree(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func checkLayout[T any](l layout) error {
	if l.pointerOK {
		return nil
	}
	var zero T
	return errors.Wrapf(api.ErrPointerType, "%T", zero)
}

// place returns a *T over the start of mem. mem must be at least
// unsafe.Sizeof(T) bytes and aligned for T.
func place[T any](mem []byte) *T {
	return (*T)(unsafe.Pointer(unsafe.SliceData(mem)))
}
