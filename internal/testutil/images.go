package testutil

import (
	"bytes"
	"encoding/binary"
)

// GPSTIFF builds a little-endian TIFF stream whose IFD0 points at a GPS IFD
// holding the given degrees/minutes and hemisphere references.
func GPSTIFF(latRef string, latDeg, latMin uint32, lonRef string, lonDeg, lonMin uint32) []byte {
	le := binary.LittleEndian
	buf := make([]byte, 128)

	// Header: byte order, magic, offset of IFD0.
	copy(buf[0:], "II")
	le.PutUint16(buf[2:], 0x2A)
	le.PutUint32(buf[4:], 8)

	// IFD0: one entry, GPSInfo pointer -> 26.
	le.PutUint16(buf[8:], 1)
	putEntry(buf[10:], 0x8825, 4, 1, 26)
	le.PutUint32(buf[22:], 0)

	// GPS IFD: four entries.
	le.PutUint16(buf[26:], 4)
	putASCII(buf[28:], 0x0001, latRef)
	putEntry(buf[40:], 0x0002, 5, 3, 80)
	putASCII(buf[52:], 0x0003, lonRef)
	putEntry(buf[64:], 0x0004, 5, 3, 104)
	le.PutUint32(buf[76:], 0)

	putRationals(buf[80:], latDeg, 1, latMin, 1, 0, 1)
	putRationals(buf[104:], lonDeg, 1, lonMin, 1, 0, 1)
	return buf
}

// NoGPSTIFF builds a TIFF stream with only an Orientation tag in IFD0.
func NoGPSTIFF() []byte {
	le := binary.LittleEndian
	buf := make([]byte, 26)
	copy(buf[0:], "II")
	le.PutUint16(buf[2:], 0x2A)
	le.PutUint32(buf[4:], 8)
	le.PutUint16(buf[8:], 1)
	putEntry(buf[10:], 0x0112, 3, 1, 1)
	le.PutUint32(buf[22:], 0)
	return buf
}

// WrapJPEG embeds a TIFF stream in a minimal JPEG APP1 segment.
func WrapJPEG(tiff []byte) []byte {
	var b bytes.Buffer
	b.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	var n [2]byte
	binary.BigEndian.PutUint16(n[:], uint16(2+6+len(tiff)))
	b.Write(n[:])
	b.WriteString("Exif\x00\x00")
	b.Write(tiff)
	b.Write([]byte{0xFF, 0xD9})
	return b.Bytes()
}

// GeotaggedJPEG is a JPEG tagged at 25°N 80°W.
func GeotaggedJPEG() []byte {
	return WrapJPEG(GPSTIFF("N", 25, 0, "W", 80, 0))
}

// PlainJPEG is a JPEG without EXIF data.
func PlainJPEG() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x04, 0x00, 0x00, 0xFF, 0xD9}
}

func putEntry(b []byte, tag, typ uint16, count, value uint32) {
	le := binary.LittleEndian
	le.PutUint16(b[0:], tag)
	le.PutUint16(b[2:], typ)
	le.PutUint32(b[4:], count)
	le.PutUint32(b[8:], value)
}

func putASCII(b []byte, tag uint16, ref string) {
	le := binary.LittleEndian
	le.PutUint16(b[0:], tag)
	le.PutUint16(b[2:], 2)
	le.PutUint32(b[4:], 2)
	b[8] = ref[0]
	b[9] = 0
}

func putRationals(b []byte, vals ...uint32) {
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[i*4:], v)
	}
}
