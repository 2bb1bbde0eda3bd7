// Package locationtest builds tiny JPEG fixtures with and without GPS EXIF tags.
package locationtest

import (
	"bytes"
	"encoding/binary"
)

// Layout of the fixture's TIFF block, which starts at tiffStart in the JPEG.
const (
	tiffStart    = 4 + 2 + 6
	ifd0Offset   = 8
	ifd0Size     = 2 + 12 + 4
	gpsOffset    = ifd0Offset + ifd0Size
	gpsSize      = 2 + 4*12 + 4
	latValOffset = gpsOffset + gpsSize
	lngValOffset = latValOffset + 24
)

// GPS tags present in GeotaggedJPEG.
const (
	TagGPSLatitude  uint16 = 0x0002
	TagGPSLongitude uint16 = 0x0004
)

// DMS is degrees, minutes, seconds with denominator 1.
type DMS [3]uint32

// GeotaggedJPEG builds the smallest JPEG goexif will accept: SOI, an APP1
// Exif segment holding a little-endian TIFF with IFD0 -> GPS IFD, then EOI.
func GeotaggedJPEG(latRef string, lat DMS, lngRef string, lng DMS) []byte {
	le := binary.LittleEndian
	tiff := &bytes.Buffer{}

	// TIFF header, IFD0 at offset 8.
	tiff.WriteString("II")
	binary.Write(tiff, le, uint16(42))
	binary.Write(tiff, le, uint32(8))

	entry := func(tag, typ uint16, count, value uint32) {
		binary.Write(tiff, le, tag)
		binary.Write(tiff, le, typ)
		binary.Write(tiff, le, count)
		binary.Write(tiff, le, value)
	}
	asciiRef := func(s string) uint32 {
		return uint32(s[0]) // "N\0\0\0" packed little-endian
	}

	// IFD0: one entry, GPSInfoIFDPointer (LONG).
	binary.Write(tiff, le, uint16(1))
	entry(0x8825, 4, 1, gpsOffset)
	binary.Write(tiff, le, uint32(0))

	// GPS IFD: refs inline (ASCII, 2 bytes), values out of line (RATIONAL x3).
	binary.Write(tiff, le, uint16(4))
	entry(0x0001, 2, 2, asciiRef(latRef))
	entry(0x0002, 5, 3, latValOffset)
	entry(0x0003, 2, 2, asciiRef(lngRef))
	entry(0x0004, 5, 3, lngValOffset)
	binary.Write(tiff, le, uint32(0))

	for _, v := range [][3]uint32{lat, lng} {
		for _, part := range v {
			binary.Write(tiff, le, part)
			binary.Write(tiff, le, uint32(1))
		}
	}

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)

	out := &bytes.Buffer{}
	out.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	binary.Write(out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write([]byte{0xFF, 0xD9})
	return out.Bytes()
}

// PlainJPEG has markers but no APP1 segment.
func PlainJPEG() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x04, 0x00, 0x00, 0xFF, 0xD9}
}

// SetTagCount returns a copy of a GeotaggedJPEG fixture with the value count
// of one GPS entry replaced.
func SetTagCount(img []byte, tag uint16, count uint32) []byte {
	return patchGPSEntry(img, tag, 4, count)
}

// SetTagOffset returns a copy of a GeotaggedJPEG fixture whose GPS entry
// points its values at offset.
func SetTagOffset(img []byte, tag uint16, offset uint32) []byte {
	return patchGPSEntry(img, tag, 8, offset)
}

// SetNextIFD returns a copy of a GeotaggedJPEG fixture whose IFD0 links to
// another directory at offset.
func SetNextIFD(img []byte, offset uint32) []byte {
	out := bytes.Clone(img)
	binary.LittleEndian.PutUint32(out[tiffStart+ifd0Offset+2+12:], offset)
	return out
}

func patchGPSEntry(img []byte, tag uint16, field int, value uint32) []byte {
	le := binary.LittleEndian
	out := bytes.Clone(img)
	dir := tiffStart + gpsOffset
	n := int(le.Uint16(out[dir:]))
	for i := range n {
		e := dir + 2 + i*12
		if le.Uint16(out[e:]) == tag {
			le.PutUint32(out[e+field:], value)
			return out
		}
	}
	panic("locationtest: tag not in fixture")
}
