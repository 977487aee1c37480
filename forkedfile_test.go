// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package unrez

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// buildMacBinary encodes the forks as MacBinary with a valid CRC.
func buildMacBinary(name string, dataFork, rsrcFork []byte) []byte {
	var header [128]byte
	header[1] = byte(len(name))
	copy(header[2:], name)
	copy(header[65:], "TEXT")
	copy(header[69:], "ttxt")
	binary.BigEndian.PutUint32(header[83:], uint32(len(dataFork)))
	binary.BigEndian.PutUint32(header[87:], uint32(len(rsrcFork)))
	header[122] = 129
	header[123] = 129
	binary.BigEndian.PutUint16(header[124:], macBinaryCRC(header[:124]))

	out := header[:]
	out = append(out, dataFork...)
	out = append(out, make([]byte, int(align128(int64(len(out))))-len(out))...)
	out = append(out, rsrcFork...)
	out = append(out, make([]byte, int(align128(int64(len(out))))-len(out))...)
	return out
}

// buildAppleDouble encodes a resource fork and a real-name record as an
// AppleDouble side file.
func buildAppleDouble(name string, rsrcFork []byte) []byte {
	entries := [][2]uint32{} // id, size
	if name != "" {
		entries = append(entries, [2]uint32{entryRealName, uint32(len(name))})
	}
	entries = append(entries, [2]uint32{entryRsrc, uint32(len(rsrcFork))})

	var out bytes.Buffer
	out.Write(appleDoubleMagic)
	binary.Write(&out, binary.BigEndian, uint32(0x00020000))
	out.Write(make([]byte, 16))
	binary.Write(&out, binary.BigEndian, uint16(len(entries)))
	offset := uint32(26 + 12*len(entries))
	for _, e := range entries {
		binary.Write(&out, binary.BigEndian, e[0])
		binary.Write(&out, binary.BigEndian, offset)
		binary.Write(&out, binary.BigEndian, e[1])
		offset += e[1]
	}
	if name != "" {
		out.WriteString(name)
	}
	out.Write(rsrcFork)
	return out.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o666); err != nil {
		t.Fatal(err)
	}
}

func TestMacBinaryPairing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "foo.bin", buildMacBinary("foo", []byte("12345"), []byte("1234567")))

	ff, err := OpenForks(filepath.Join(dir, "foo.bin"))
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	if ff.Data.Size != 5 || ff.Rsrc.Size != 7 {
		t.Errorf("fork sizes: data %d rsrc %d, want 5 and 7", ff.Data.Size, ff.Rsrc.Size)
	}
	if ff.Data.File != ff.Rsrc.File {
		t.Error("MacBinary forks should share one file")
	}
	if ff.Data.Offset != 128 || ff.Rsrc.Offset != 256 {
		t.Errorf("fork offsets: data %d rsrc %d, want 128 and 256", ff.Data.Offset, ff.Rsrc.Offset)
	}
	if ff.Metadata.Type != TypeMacBinary {
		t.Errorf("container type: got %v", ff.Metadata.Type)
	}
	if string(ff.Metadata.Filename) != "foo" {
		t.Errorf("original filename: got %q", ff.Metadata.Filename)
	}
	if string(ff.Metadata.TypeCode[:]) != "TEXT" || string(ff.Metadata.CreatorCode[:]) != "ttxt" {
		t.Errorf("type/creator: got %q/%q", ff.Metadata.TypeCode, ff.Metadata.CreatorCode)
	}

	d, err := ReadFork(&ff.Rsrc)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if string(d.Bytes()) != "1234567" {
		t.Errorf("rsrc fork contents: got %q", d.Bytes())
	}
}

func TestMacBinaryBadCRC(t *testing.T) {
	dir := t.TempDir()
	enc := buildMacBinary("foo", []byte("12345"), []byte("1234567"))
	enc[124] ^= 0xff
	writeFile(t, dir, "foo.bin", enc)

	// The MacBinary parse fails with a format error, and detection falls
	// through to treating the file as a plain data fork.
	ff, err := OpenForks(filepath.Join(dir, "foo.bin"))
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	if ff.Rsrc.Size != 0 {
		t.Errorf("rsrc size: got %d, want 0", ff.Rsrc.Size)
	}
	if ff.Data.Size != int64(len(enc)) {
		t.Errorf("data size: got %d, want %d", ff.Data.Size, len(enc))
	}
}

func TestAppleDoublePairing(t *testing.T) {
	dir := t.TempDir()
	rsrc := bytes.Repeat([]byte{0xaa}, 128)
	writeFile(t, dir, "foo", []byte("data fork contents"))
	writeFile(t, dir, "._foo", buildAppleDouble("foo", rsrc))

	ff, err := OpenForks(filepath.Join(dir, "foo"))
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	if ff.Data.Size != 18 || ff.Rsrc.Size != 128 {
		t.Errorf("fork sizes: data %d rsrc %d, want 18 and 128", ff.Data.Size, ff.Rsrc.Size)
	}
	if ff.Data.File == ff.Rsrc.File {
		t.Error("AppleDouble forks should be in different files")
	}
	if ff.Metadata.Type != TypeAppleDouble {
		t.Errorf("container type: got %v", ff.Metadata.Type)
	}
	if string(ff.Metadata.Filename) != "foo" {
		t.Errorf("real name: got %q", ff.Metadata.Filename)
	}

	// Opening the side file directly finds the same resource fork, with
	// the data fork taken from the companion.
	ff2, err := OpenForks(filepath.Join(dir, "._foo"))
	if err != nil {
		t.Fatal(err)
	}
	defer ff2.Close()
	if ff2.Rsrc.Size != 128 {
		t.Errorf("side file rsrc size: got %d, want 128", ff2.Rsrc.Size)
	}
	if ff2.Data.Size != 18 {
		t.Errorf("side file data size: got %d, want 18", ff2.Data.Size)
	}
}

func TestAppleDoubleNoCompanion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "._orphan", buildAppleDouble("orphan", []byte("1234567890123456")))

	ff, err := OpenForks(filepath.Join(dir, "._orphan"))
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	if ff.Rsrc.Size != 16 {
		t.Errorf("rsrc size: got %d, want 16", ff.Rsrc.Size)
	}
	if ff.Data.Size != 0 || ff.Data.File != nil {
		t.Errorf("data fork should be absent, got size %d", ff.Data.Size)
	}
}

func TestAppleSingle(t *testing.T) {
	dir := t.TempDir()
	// AppleSingle: both forks in one file.
	var out bytes.Buffer
	out.Write(appleSingleMagic)
	binary.Write(&out, binary.BigEndian, uint32(0x00020000))
	out.Write(make([]byte, 16))
	binary.Write(&out, binary.BigEndian, uint16(2))
	binary.Write(&out, binary.BigEndian, uint32(entryData))
	binary.Write(&out, binary.BigEndian, uint32(50))
	binary.Write(&out, binary.BigEndian, uint32(4))
	binary.Write(&out, binary.BigEndian, uint32(entryRsrc))
	binary.Write(&out, binary.BigEndian, uint32(54))
	binary.Write(&out, binary.BigEndian, uint32(6))
	out.Write([]byte("datarsrc--"))
	writeFile(t, dir, "single", out.Bytes())

	ff, err := OpenForks(filepath.Join(dir, "single"))
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	if ff.Metadata.Type != TypeAppleSingle {
		t.Errorf("container type: got %v", ff.Metadata.Type)
	}
	if ff.Data.Size != 4 || ff.Rsrc.Size != 6 {
		t.Errorf("fork sizes: data %d rsrc %d, want 4 and 6", ff.Data.Size, ff.Rsrc.Size)
	}
	if ff.Data.File != ff.Rsrc.File {
		t.Error("AppleSingle forks should share one file")
	}
}

func TestAppleFileTooManyEntries(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	out.Write(appleDoubleMagic)
	binary.Write(&out, binary.BigEndian, uint32(0x00020000))
	out.Write(make([]byte, 16))
	binary.Write(&out, binary.BigEndian, uint16(17))
	for i := 0; i < 17; i++ {
		binary.Write(&out, binary.BigEndian, uint32(100+i))
		binary.Write(&out, binary.BigEndian, uint32(26+12*17))
		binary.Write(&out, binary.BigEndian, uint32(0))
	}
	writeFile(t, dir, "._many", out.Bytes())

	f, err := os.Open(filepath.Join(dir, "._many"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := ParseAppleFile(f, -1); err != ErrUnsupported {
		t.Errorf("got %v, want %v", err, ErrUnsupported)
	}
}

func TestPlainFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plain", []byte("nothing special"))

	ff, err := OpenForks(filepath.Join(dir, "plain"))
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	if ff.Data.Size != 15 || ff.Rsrc.Size != 0 {
		t.Errorf("fork sizes: data %d rsrc %d, want 15 and 0", ff.Data.Size, ff.Rsrc.Size)
	}
	if ff.Metadata.Type != TypeNone {
		t.Errorf("container type: got %v", ff.Metadata.Type)
	}
}

func TestMissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := OpenForks(filepath.Join(dir, "nope")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
