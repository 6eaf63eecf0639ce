package utils

import (
	"bytes"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

const NAME_SIZE = 8

var noName = [NAME_SIZE]byte{'-'}

// BytesToString trims trailing zero bytes and validates the rest as utf-8
func BytesToString(bs []byte) (string, error) {
	s, _, err := transform.Bytes(encoding.UTF8Validator, bytes.TrimRight(bs, "\x00"))
	if err != nil {
		return "", errors.Wrapf(err, "Invalid name %q", bs)
	}
	return string(s), nil
}

// NameToString decodes 8-byte lump name field.
// Returns ok == false for "-" placeholder meaning absence of texture.
func NameToString(bs []byte) (name string, ok bool, err error) {
	if len(bs) == NAME_SIZE && bytes.Equal(bs, noName[:]) {
		return "", false, nil
	}
	name, err = BytesToString(bs)
	return name, err == nil, err
}

func StringToName(s string) [NAME_SIZE]byte {
	var r [NAME_SIZE]byte
	copy(r[:], s)
	return r
}
