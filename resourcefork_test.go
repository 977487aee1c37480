// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package unrez

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"
)

// forkRsrc is one resource for buildFork.
type forkRsrc struct {
	id   int16
	name string
	data []byte
}

// buildFork assembles a resource fork the way the Resource Manager lays it
// out: header, data section, then a map whose type list starts at offset
// 28 so that the type count doubles as the last map header field.
func buildFork(types map[string][]forkRsrc, order []string) []byte {
	var data bytes.Buffer
	var names bytes.Buffer

	type ref struct {
		id         int16
		nameOffset int16
		dataOffset int
	}
	refs := make(map[string][]ref)
	for _, code := range order {
		for _, r := range types[code] {
			e := ref{id: r.id, nameOffset: -1, dataOffset: data.Len()}
			binary.Write(&data, binary.BigEndian, int32(len(r.data)))
			data.Write(r.data)
			if r.name != "" {
				e.nameOffset = int16(names.Len())
				names.WriteByte(byte(len(r.name)))
				names.WriteString(r.name)
			}
			refs[code] = append(refs[code], e)
		}
	}

	total := 0
	for _, code := range order {
		total += len(refs[code])
	}

	var m bytes.Buffer
	m.Write(make([]byte, 22))
	const toff = 28
	binary.Write(&m, binary.BigEndian, uint16(0))   // attributes
	binary.Write(&m, binary.BigEndian, int16(toff)) // type list offset
	nameOffset := toff + 2 + 8*len(order) + 12*total
	binary.Write(&m, binary.BigEndian, int16(nameOffset))   // name list offset
	binary.Write(&m, binary.BigEndian, int16(len(order)-1)) // type count - 1
	pos := 2 + 8*len(order) // ref lists, relative to the type list offset
	for _, code := range order {
		m.WriteString(code)
		binary.Write(&m, binary.BigEndian, int16(len(refs[code])-1))
		binary.Write(&m, binary.BigEndian, int16(pos))
		pos += 12 * len(refs[code])
	}
	for _, code := range order {
		for _, r := range refs[code] {
			binary.Write(&m, binary.BigEndian, r.id)
			binary.Write(&m, binary.BigEndian, r.nameOffset)
			m.WriteByte(0) // attributes
			m.WriteByte(byte(r.dataOffset >> 16))
			m.WriteByte(byte(r.dataOffset >> 8))
			m.WriteByte(byte(r.dataOffset))
			m.Write(make([]byte, 4))
		}
	}
	m.Write(names.Bytes())

	var fork bytes.Buffer
	binary.Write(&fork, binary.BigEndian, int32(16))
	binary.Write(&fork, binary.BigEndian, int32(16+data.Len()))
	binary.Write(&fork, binary.BigEndian, int32(data.Len()))
	binary.Write(&fork, binary.BigEndian, int32(m.Len()))
	fork.Write(data.Bytes())
	fork.Write(m.Bytes())
	return fork.Bytes()
}

func TestFindResource(t *testing.T) {
	fork := buildFork(map[string][]forkRsrc{
		"TEXT": {{id: 128, data: []byte("hi")}},
	}, []string{"TEXT"})

	rf, err := OpenResourceForkMem(fork)
	if err != nil {
		t.Fatal(err)
	}
	data, err := rf.FindResource([4]byte{'T', 'E', 'X', 'T'}, 128)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hi" {
		t.Errorf("got %q, want %q", data, "hi")
	}
}

func TestFindResourceMissing(t *testing.T) {
	fork := buildFork(map[string][]forkRsrc{
		"TEXT": {{id: 128, data: []byte("hi")}},
	}, []string{"TEXT"})

	rf, err := OpenResourceForkMem(fork)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rf.FindResource([4]byte{'T', 'E', 'X', 'T'}, 999); err != ErrResourceNotFound {
		t.Errorf("missing id: got %v, want %v", err, ErrResourceNotFound)
	}
	if _, err := rf.FindResource([4]byte{'X', 'X', 'X', 'X'}, 128); err != ErrResourceNotFound {
		t.Errorf("missing type: got %v, want %v", err, ErrResourceNotFound)
	}
}

func TestResourceDirectory(t *testing.T) {
	fork := buildFork(map[string][]forkRsrc{
		"PICT": {
			{id: 128, name: "first", data: bytes.Repeat([]byte{0xee}, 99)},
			{id: -32768, data: nil},
		},
		"STR ": {{id: 0, name: "greeting", data: []byte("\x05hello")}},
	}, []string{"PICT", "STR "})

	rf, err := OpenResourceForkMem(fork)
	if err != nil {
		t.Fatal(err)
	}
	if len(rf.Types) != 2 {
		t.Fatalf("got %d types, want 2", len(rf.Types))
	}
	for i, want := range []string{"PICT", "STR "} {
		if got := string(rf.Types[i].Code[:]); got != want {
			t.Errorf("type %d: got %q, want %q", i, got, want)
		}
	}

	ti := rf.FindType([4]byte{'P', 'I', 'C', 'T'})
	if ti != 0 {
		t.Fatalf("FindType: got %d, want 0", ti)
	}
	if rf.Types[ti].Resources != nil {
		t.Error("resources loaded before LoadType")
	}
	if err := rf.LoadType(ti); err != nil {
		t.Fatal(err)
	}
	if n := len(rf.Types[ti].Resources); n != 2 {
		t.Fatalf("got %d resources, want 2", n)
	}

	ri := rf.FindID(ti, 128)
	if ri < 0 {
		t.Fatal("PICT #128 not found")
	}
	data, err := rf.GetData(ti, ri)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 99 || !bytes.Equal(data, bytes.Repeat([]byte{0xee}, 99)) {
		t.Errorf("PICT #128: wrong data, len %d", len(data))
	}
	name, err := rf.GetName(ti, ri)
	if err != nil || string(name) != "first" {
		t.Errorf("PICT #128 name: got %q, %v", name, err)
	}

	ri = rf.FindID(ti, -32768)
	if ri < 0 {
		t.Fatal("PICT #-32768 not found")
	}
	data, err = rf.GetData(ti, ri)
	if err != nil || len(data) != 0 {
		t.Errorf("empty resource: got %d bytes, %v", len(data), err)
	}
	name, err = rf.GetName(ti, ri)
	if err != nil || name != nil {
		t.Errorf("unnamed resource: got %q, %v", name, err)
	}
}

func TestOpenBoundaries(t *testing.T) {
	if _, err := OpenResourceFork(&Fork{}); err != ErrNoResourceFork {
		t.Errorf("empty fork: got %v, want %v", err, ErrNoResourceFork)
	}
	if _, err := OpenResourceFork(&Fork{Size: 15}); err != ErrInvalid {
		t.Errorf("15-byte fork: got %v, want %v", err, ErrInvalid)
	}
	if _, err := OpenResourceFork(&Fork{Size: 1<<25 + 1}); err != ErrResourceForkTooLarge {
		t.Errorf("32 MiB + 1 byte fork: got %v, want %v", err, ErrResourceForkTooLarge)
	}
	if _, err := OpenResourceForkMem(make([]byte, 16)); err == nil {
		// Zeroed header: map size 0 < 30.
		t.Error("zeroed header: expected an error")
	}
}

// Whatever bytes come in, opening must either fail or index only within
// the buffer: no panics.
func TestOpenFuzz(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	valid := buildFork(map[string][]forkRsrc{
		"TEXT": {{id: 128, name: "n", data: []byte("hi")}},
	}, []string{"TEXT"})
	for i := 0; i < 5000; i++ {
		buf := append([]byte(nil), valid...)
		for j := 0; j < 8; j++ {
			buf[rng.Intn(len(buf))] = byte(rng.Int())
		}
		if rng.Intn(4) == 0 {
			buf = buf[:rng.Intn(len(buf)+1)]
		}
		rf, err := OpenResourceForkMem(buf)
		if err != nil {
			continue
		}
		for ti := range rf.Types {
			if err := rf.LoadType(ti); err != nil {
				continue
			}
			for ri := range rf.Types[ti].Resources {
				rf.GetData(ti, ri)
				rf.GetName(ti, ri)
			}
		}
	}
}
