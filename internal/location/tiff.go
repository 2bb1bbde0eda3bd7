package location

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var errMalformedEXIF = errors.New("malformed exif")

const (
	tagExifIFD    = 0x8769
	tagGPSIFD     = 0x8825
	tagInteropIFD = 0xA005

	// maxIFDs bounds the directory walk; real files carry a handful.
	maxIFDs = 32
)

// tiffTypeSize is the byte size of one value of each TIFF field type.
var tiffTypeSize = map[uint16]uint64{
	1: 1, 2: 1, 3: 2, 4: 4, 5: 8, 6: 1,
	7: 1, 8: 2, 9: 4, 10: 8, 11: 4, 12: 8,
}

// exifTIFF returns the TIFF structure holding the EXIF data: the whole input
// for a TIFF file, or the body of the JPEG APP1 "Exif" segment.
func exifTIFF(content []byte) ([]byte, error) {
	if len(content) >= 4 {
		switch string(content[:4]) {
		case "II*\x00", "MM\x00*":
			return content, nil
		}
	}
	if len(content) < 2 || content[0] != 0xFF || content[1] != 0xD8 {
		return nil, ErrNoGeotag
	}

	pos := 2
	for pos+4 <= len(content) {
		if content[pos] != 0xFF {
			return nil, ErrNoGeotag
		}
		marker := content[pos+1]
		if marker == 0xFF {
			pos++
			continue
		}
		// Start of scan or end of image: no metadata follows.
		if marker == 0xDA || marker == 0xD9 {
			break
		}
		size := int(binary.BigEndian.Uint16(content[pos+2 : pos+4]))
		if size < 2 || pos+2+size > len(content) {
			return nil, fmt.Errorf("%w: truncated segment", errMalformedEXIF)
		}
		body := content[pos+4 : pos+2+size]
		if marker == 0xE1 && bytes.HasPrefix(body, []byte("Exif\x00\x00")) {
			return body[6:], nil
		}
		pos += 2 + size
	}
	return nil, ErrNoGeotag
}

// checkIFDs walks every directory a decoder would visit (the IFD0 chain and
// the Exif, GPS and interoperability sub-directories) and rejects the data
// unless every entry's values lie inside it. Decoders trust these counts.
func checkIFDs(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: short header", errMalformedEXIF)
	}

	var order binary.ByteOrder
	switch string(data[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return fmt.Errorf("%w: bad byte order", errMalformedEXIF)
	}

	pending := []uint64{uint64(order.Uint32(data[4:8]))}
	seen := map[uint64]bool{}
	size := uint64(len(data))

	for len(pending) > 0 {
		offset := pending[0]
		pending = pending[1:]
		if offset == 0 {
			continue
		}
		if seen[offset] {
			return fmt.Errorf("%w: directory at %d referenced twice", errMalformedEXIF, offset)
		}
		if len(seen) == maxIFDs {
			return fmt.Errorf("%w: too many directories", errMalformedEXIF)
		}
		seen[offset] = true

		if offset+2 > size {
			return fmt.Errorf("%w: directory at %d out of range", errMalformedEXIF, offset)
		}
		n := uint64(order.Uint16(data[offset:]))
		end := offset + 2 + n*12
		if end+4 > size {
			return fmt.Errorf("%w: directory at %d truncated", errMalformedEXIF, offset)
		}

		for i := range n {
			e := data[offset+2+i*12:]
			tag := order.Uint16(e[0:2])
			typ := order.Uint16(e[2:4])
			count := uint64(order.Uint32(e[4:8]))

			unit, ok := tiffTypeSize[typ]
			if !ok {
				return fmt.Errorf("%w: tag %#x has unknown type %d", errMalformedEXIF, tag, typ)
			}
			valLen := count * unit
			valAt := offset + 2 + i*12 + 8
			if valLen > 4 {
				valAt = uint64(order.Uint32(e[8:12]))
			}
			if valLen > size || valAt+valLen > size {
				return fmt.Errorf("%w: tag %#x values out of range", errMalformedEXIF, tag)
			}

			switch tag {
			case tagExifIFD, tagGPSIFD, tagInteropIFD:
				if count == 0 {
					continue
				}
				switch unit {
				case 2:
					pending = append(pending, uint64(order.Uint16(data[valAt:])))
				case 4:
					pending = append(pending, uint64(order.Uint32(data[valAt:])))
				}
			}
		}

		pending = append(pending, uint64(order.Uint32(data[end:end+4])))
	}
	return nil
}
