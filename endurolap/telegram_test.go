package endurolap

import (
	"errors"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	raw := frame("POS")
	body, err := unframe(raw)
	if err != nil {
		t.Fatal(err)
	}
	if body != "POS" {
		t.Errorf("got body %q, expected POS", body)
	}
}

func TestFrameFormat(t *testing.T) {
	raw := frame("STP")
	if raw[0] != '$' {
		t.Errorf("frame does not begin with $, got %q", raw[0])
	}
	if raw[len(raw)-5] != '*' {
		t.Errorf("frame checksum separator misplaced in %q", raw)
	}
}

func TestUnframeRejectsBadChecksum(t *testing.T) {
	raw := frame("POS")
	raw[len(raw)-1] ^= 0xff
	_, err := unframe(raw)
	if !errors.Is(err, ErrChecksum) {
		t.Errorf("expected ErrChecksum, got %v", err)
	}
}

func TestUnframeRejectsBadFraming(t *testing.T) {
	cases := [][]byte{
		[]byte("POS*0000"),
		[]byte("$POS"),
		[]byte("$POS*00"),
		{},
	}
	for _, c := range cases {
		_, err := unframe(c)
		if !errors.Is(err, ErrFraming) {
			t.Errorf("unframe(%q): expected ErrFraming, got %v", c, err)
		}
	}
}

func TestUnframeCorruptedBody(t *testing.T) {
	raw := frame("MOV,0.1,0.2,0.3,40")
	raw[3] = 'X'
	_, err := unframe(raw)
	if !errors.Is(err, ErrChecksum) {
		t.Errorf("expected ErrChecksum for corrupted body, got %v", err)
	}
}
