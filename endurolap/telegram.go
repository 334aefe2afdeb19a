package endurolap

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/snksoft/crc"
)

const (
	// sof is the start of frame byte
	sof = byte('$')

	// crcSep separates the body from the checksum trailer
	crcSep = byte('*')

	// Terminator is the frame terminator used on both directions
	Terminator = byte('\r')
)

var (
	crcTable = crc.NewTable(crc.XMODEM)

	// ErrFraming is generated when a frame does not carry the start
	// byte and checksum separator where they belong
	ErrFraming = errors.New("malformed frame, expected $<body>*<crc>")

	// ErrChecksum is generated when a frame's checksum trailer does not
	// match its body
	ErrChecksum = errors.New("checksum mismatch on received frame")
)

// checksum computes the four hex digit CRC trailer over a frame body
// in a concurrent safe way and one line
func checksum(body []byte) []byte {
	c := crcTable.InitCrc()
	c = crcTable.UpdateCrc(c, body)
	return []byte(fmt.Sprintf("%04X", crcTable.CRC16(c)))
}

// frame wraps a command body as $<body>*<crc>, without the terminator
func frame(body string) []byte {
	out := make([]byte, 0, len(body)+6)
	out = append(out, sof)
	out = append(out, body...)
	out = append(out, crcSep)
	out = append(out, checksum([]byte(body))...)
	return out
}

// unframe validates a received frame and returns its body
func unframe(raw []byte) (string, error) {
	if len(raw) < 6 || raw[0] != sof {
		return "", ErrFraming
	}
	idx := bytes.LastIndexByte(raw, crcSep)
	if idx < 1 || len(raw)-idx != 5 {
		return "", ErrFraming
	}
	body := raw[1:idx]
	if !bytes.Equal(raw[idx+1:], checksum(body)) {
		return "", ErrChecksum
	}
	return string(body), nil
}
