package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("2 cups\n"), "Quantity?", &out)
	if err != nil || got != "2 cups" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetOptionalText(t *testing.T) {
	var out bytes.Buffer
	got, ok, err := GetOptionalText(rdr("Banana\n"), "Food name", &out)
	if err != nil || !ok || got != "Banana" {
		t.Fatalf("got %q ok=%v err=%v", got, ok, err)
	}

	_, ok, err = GetOptionalText(rdr("\n"), "Food name", &out)
	if err != nil || ok {
		t.Fatalf("empty line should keep current value, ok=%v err=%v", ok, err)
	}
}
