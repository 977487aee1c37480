// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package macroman

import (
	"bytes"
	"testing"
)

// Every Mac Roman byte maps to a distinct code point and round-trips.
func TestRoundTrip(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	s := ToUTF8(all)
	back, n := FromUTF8(s)
	if n != len(s) {
		t.Fatalf("consumed %d of %d bytes", n, len(s))
	}
	if !bytes.Equal(back, all) {
		t.Error("round trip mismatch")
	}
}

func TestToUTF8(t *testing.T) {
	cases := []struct {
		in   []byte
		want string
	}{
		{[]byte("Desktop Folder"), "Desktop Folder"},
		{[]byte{'c', 'a', 'f', 0x8e}, "café"},
		{[]byte{0xa5, 0xd0, 0xd5}, "•–’"},
		{[]byte{0xf0}, "\uf8ff"}, // Apple logo, private use area
		{nil, ""},
	}
	for _, c := range cases {
		if got := ToUTF8(c.in); got != c.want {
			t.Errorf("ToUTF8(%v): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFromUTF8(t *testing.T) {
	got, n := FromUTF8("café")
	if n != 5 || !bytes.Equal(got, []byte{'c', 'a', 'f', 0x8e}) {
		t.Errorf("café: got %v, consumed %d", got, n)
	}

	// The arrow has no Mac Roman equivalent: conversion stops there and
	// reports how much input it consumed.
	got, n = FromUTF8("ab→cd")
	if n != 2 || !bytes.Equal(got, []byte("ab")) {
		t.Errorf("partial: got %v, consumed %d", got, n)
	}

	// Invalid UTF-8 stops the conversion too.
	got, n = FromUTF8("ok\xff")
	if n != 2 || !bytes.Equal(got, []byte("ok")) {
		t.Errorf("invalid: got %v, consumed %d", got, n)
	}
}
