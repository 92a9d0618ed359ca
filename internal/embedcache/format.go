// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package embedcache persists the Vector Index across process restarts as a
// single binary file per project: a length-prefixed header record followed
// by a sequence of length-prefixed entries. Version bumps are hard
// breaks — an unrecognized schema_version refuses to load rather than
// guessing at a layout.
package embedcache

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// SchemaVersion is the current on-disk format version. Bump on any layout
// change; loaders of a different version refuse to read the file.
const SchemaVersion uint32 = 1

// Header is the fixed preamble of a cache file.
type Header struct {
	SchemaVersion     uint32
	ModelID           string
	ModelRepo         string
	Dims              uint32
	Timestamp         uint64
	EntityCount       uint64
	FileTrackerExport []byte
}

// Entry is one persisted embedding record.
type Entry struct {
	NodeType   string
	NodeID     string
	Vector     []float32
	SourceText string
}

func writeLenPrefixed(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readLenPrefixed(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	// A corrupted length prefix can claim an absurd size; cap it well above
	// any realistic entry (a single function's source text) to fail fast
	// on garbage instead of attempting a multi-gigabyte allocation.
	const maxLen = 64 * 1024 * 1024
	if n > maxLen {
		return nil, fmt.Errorf("length-prefixed field too large: %d bytes", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteHeader serializes h to w.
func WriteHeader(w io.Writer, h Header) error {
	if err := binary.Write(w, binary.LittleEndian, h.SchemaVersion); err != nil {
		return err
	}
	if err := writeLenPrefixed(w, []byte(h.ModelID)); err != nil {
		return err
	}
	if err := writeLenPrefixed(w, []byte(h.ModelRepo)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, h.Dims); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, h.Timestamp); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, h.EntityCount); err != nil {
		return err
	}
	return writeLenPrefixed(w, h.FileTrackerExport)
}

// ReadHeader deserializes a Header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h.SchemaVersion); err != nil {
		return h, err
	}
	modelID, err := readLenPrefixed(r)
	if err != nil {
		return h, err
	}
	h.ModelID = string(modelID)

	modelRepo, err := readLenPrefixed(r)
	if err != nil {
		return h, err
	}
	h.ModelRepo = string(modelRepo)

	if err := binary.Read(r, binary.LittleEndian, &h.Dims); err != nil {
		return h, err
	}
	if err := binary.Read(r, binary.LittleEndian, &h.Timestamp); err != nil {
		return h, err
	}
	if err := binary.Read(r, binary.LittleEndian, &h.EntityCount); err != nil {
		return h, err
	}
	h.FileTrackerExport, err = readLenPrefixed(r)
	return h, err
}

// WriteEntry serializes one entry to w.
func WriteEntry(w io.Writer, e Entry) error {
	if err := writeLenPrefixed(w, []byte(e.NodeType)); err != nil {
		return err
	}
	if err := writeLenPrefixed(w, []byte(e.NodeID)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(e.Vector))); err != nil {
		return err
	}
	for _, f := range e.Vector {
		if err := binary.Write(w, binary.LittleEndian, math.Float32bits(f)); err != nil {
			return err
		}
	}
	return writeLenPrefixed(w, []byte(e.SourceText))
}

// ReadEntry deserializes one entry from r.
func ReadEntry(r io.Reader) (Entry, error) {
	var e Entry
	nodeType, err := readLenPrefixed(r)
	if err != nil {
		return e, err
	}
	e.NodeType = string(nodeType)

	nodeID, err := readLenPrefixed(r)
	if err != nil {
		return e, err
	}
	e.NodeID = string(nodeID)

	var dims uint32
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return e, err
	}
	const maxDims = 1 << 20
	if dims > maxDims {
		return e, fmt.Errorf("vector dimensionality implausibly large: %d", dims)
	}
	e.Vector = make([]float32, dims)
	for i := range e.Vector {
		var bits uint32
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return e, err
		}
		e.Vector[i] = math.Float32frombits(bits)
	}

	sourceText, err := readLenPrefixed(r)
	if err != nil {
		return e, err
	}
	e.SourceText = string(sourceText)
	return e, nil
}

// bufferedReader is a small helper so callers don't need to remember to
// wrap os.File in a bufio.Reader themselves.
func bufferedReader(r io.Reader) *bufio.Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReaderSize(r, 64*1024)
}
