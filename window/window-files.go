// elphase: read-backed phasing of adjacent heterozygous variant calls.
// Copyright (c) 2020 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elprep/blob/master/LICENSE.txt>.

package window

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/exascience/elphase/internal"
	"github.com/exascience/elphase/phasing"
)

// Format is the encoding of a window file.
type Format int

// The supported window file encodings.
const (
	Auto Format = iota
	YAML
	MessagePack
)

func (f Format) String() string {
	switch f {
	case Auto:
		return "auto"
	case YAML:
		return "yaml"
	case MessagePack:
		return "msgpack"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat parses a format name as given on the command line.
// The empty string is Auto.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return Auto, nil
	case "yaml", "yml":
		return YAML, nil
	case "msgpack", "messagepack", "mpk":
		return MessagePack, nil
	default:
		return Auto, fmt.Errorf("unknown window file format %q", name)
	}
}

// FormatOf determines the format of a file from its extension. Files
// that are not MessagePack are YAML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk", ".msg":
		return MessagePack
	default:
		return YAML
	}
}

func resolve(format Format, path string) Format {
	if format == Auto {
		return FormatOf(path)
	}
	return format
}

// Decode reads a window file.
func Decode(r io.Reader, format Format) (*File, error) {
	var f File
	switch format {
	case YAML, Auto:
		if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
			return nil, fmt.Errorf("invalid YAML window file: %w", err)
		}
	case MessagePack:
		if err := msgpack.NewDecoder(r).Decode(&f); err != nil {
			return nil, fmt.Errorf("invalid MessagePack window file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown window file format %v", format)
	}
	return &f, nil
}

// Encode writes a window file.
func Encode(w io.Writer, format Format, f *File) error {
	switch format {
	case YAML, Auto:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	case MessagePack:
		return msgpack.NewEncoder(w).Encode(f)
	default:
		return fmt.Errorf("unknown window file format %v", format)
	}
}

// ReadFile reads a window file without converting it. With format
// Auto, the format is determined by the file extension.
func ReadFile(path string, format Format) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("window file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot read window file %q: %w", path, err)
	}
	defer file.Close()
	f, err := Decode(bufio.NewReader(file), resolve(format, path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// WriteFile writes a window file. With format Auto, the format is
// determined by the file extension.
func WriteFile(path string, format Format, f *File) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if nerr := file.Close(); err == nil {
			err = nerr
		}
	}()
	out := bufio.NewWriter(file)
	if err = Encode(out, resolve(format, path), f); err != nil {
		return err
	}
	return out.Flush()
}

// Load reads a window file and converts it to windows ready for phasing.
func Load(path string, format Format) ([]*phasing.Window, error) {
	f, err := ReadFile(path, format)
	if err != nil {
		return nil, err
	}
	windows, err := f.ToPhasing()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return windows, nil
}

// LoadAll loads the windows of a window file, or of every regular file
// in a directory in order of file name. Hidden files and
// subdirectories are skipped.
func LoadAll(path string, format Format) ([]*phasing.Window, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("window file not found: %s", path)
		}
		return nil, err
	}
	if !info.IsDir() {
		return Load(path, format)
	}
	files, err := internal.Directory(path)
	if err != nil {
		return nil, err
	}
	var windows []*phasing.Window
	for _, file := range files {
		if strings.HasPrefix(file, ".") {
			continue
		}
		name := filepath.Join(path, file)
		if fi, err := os.Stat(name); err != nil || !fi.Mode().IsRegular() {
			continue
		}
		w, err := Load(name, format)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w...)
	}
	return windows, nil
}
