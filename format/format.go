package format

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

type Format int

const (
	JSONFormat Format = iota
	XMLFormat
	INIFormat
	INFOFormat
)

var ErrBadFormat = errors.New("bad format")

func ParseFormat(v string) (Format, error) {
	f, ok := map[string]Format{
		"j":    JSONFormat,
		"json": JSONFormat,
		"x":    XMLFormat,
		"xml":  XMLFormat,
		"i":    INIFormat,
		"ini":  INIFormat,
		"n":    INFOFormat,
		"info": INFOFormat,
	}[strings.ToLower(v)]
	if ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadFormat, v)
}

// Sniff guesses the format from a file name's extension.
func Sniff(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return 0, fmt.Errorf("%w: %q has no extension", ErrBadFormat, path)
	}
	return ParseFormat(ext)
}

func (f Format) String() string {
	d, err := f.MarshalText()
	if err != nil {
		return err.Error()
	}
	return string(d)
}

func (f Format) MarshalText() ([]byte, error) {
	switch f {
	case JSONFormat:
		return []byte("json"), nil
	case XMLFormat:
		return []byte("xml"), nil
	case INIFormat:
		return []byte("ini"), nil
	case INFOFormat:
		return []byte("info"), nil
	default:
		return nil, fmt.Errorf("<err: %d is not a format>", f)
	}
}

func (f *Format) UnmarshalText(d []byte) error {
	pf, err := ParseFormat(string(d))
	if err != nil {
		return err
	}
	*f = pf
	return nil
}

func (f Format) IsJSON() bool { return f == JSONFormat }
func (f Format) IsXML() bool  { return f == XMLFormat }
func (f Format) IsINI() bool  { return f == INIFormat }
func (f Format) IsINFO() bool { return f == INFOFormat }

// Suffix returns the file extension for this format (including the dot).
func (f Format) Suffix() string {
	switch f {
	case JSONFormat:
		return ".json"
	case XMLFormat:
		return ".xml"
	case INIFormat:
		return ".ini"
	case INFOFormat:
		return ".info"
	default:
		return ""
	}
}

// AllFormats returns all supported formats in preference order.
func AllFormats() []Format {
	return []Format{JSONFormat, XMLFormat, INIFormat, INFOFormat}
}
