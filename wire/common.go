// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
)

// littleEndian is the byte order every multi-byte header field uses on the
// wire.
var littleEndian = binary.LittleEndian

// uint32Time represents a unix timestamp encoded with a uint32. It is used as
// a way to signal the readElement function how to decode a timestamp into a Go
// int64 since it is otherwise ambiguous.
type uint32Time int64

// readElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element pointed to.
func readElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *int32:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return errors.WithStack(err)
		}
		*e = int32(littleEndian.Uint32(buf[:]))
		return nil

	case *uint32:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return errors.WithStack(err)
		}
		*e = littleEndian.Uint32(buf[:])
		return nil

	case *uint32Time:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return errors.WithStack(err)
		}
		*e = uint32Time(littleEndian.Uint32(buf[:]))
		return nil

	case *chainhash.Hash:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return errors.WithStack(err)
		}
		return nil
	}

	return errors.Errorf("readElement: unsupported element type %T", element)
}

// readElements reads multiple items from r. It is equivalent to multiple
// calls to readElement.
func readElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := readElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// writeElement writes the little endian representation of element to w.
func writeElement(w io.Writer, element interface{}) error {
	var buf [4]byte
	switch e := element.(type) {
	case int32:
		littleEndian.PutUint32(buf[:], uint32(e))
	case uint32:
		littleEndian.PutUint32(buf[:], e)
	case *chainhash.Hash:
		_, err := w.Write(e[:])
		return errors.WithStack(err)
	default:
		return errors.Errorf("writeElement: unsupported element type %T", element)
	}
	_, err := w.Write(buf[:])
	return errors.WithStack(err)
}

// writeElements writes multiple items to w. It is equivalent to multiple
// calls to writeElement.
func writeElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := writeElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}
