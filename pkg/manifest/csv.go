package manifest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

var csvHeader = []string{"index", "name", "size", "sha256", "unit"}

// WriteCSV writes m as "# key: value" metadata lines followed by one CSV
// record per chunk.
func WriteCSV(w io.Writer, m *Manifest) error {
	bw := bufio.NewWriter(w)
	meta := [][2]string{
		{"source", m.Source},
		{"source_size", strconv.FormatInt(m.SourceSize, 10)},
		{"mode", m.Mode},
		{"budget", strconv.FormatUint(m.Budget, 10)},
		{"trailing_terminator", strconv.FormatBool(m.TrailingTerminator)},
		{"root", m.Root},
		{"created_at", m.CreatedAt.Format(time.RFC3339)},
	}
	for _, kv := range meta {
		fmt.Fprintf(bw, "# %s: %s\n", kv[0], kv[1])
	}

	cw := csv.NewWriter(bw)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write manifest header: %w", err)
	}
	for _, e := range m.Entries {
		record := []string{
			strconv.FormatUint(uint64(e.Index), 10),
			e.Name,
			strconv.FormatUint(e.Size, 10),
			e.Digest,
			e.Unit,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write manifest entry %d: %w", e.Index, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return bw.Flush()
}

// ReadCSV parses a manifest written by WriteCSV.
func ReadCSV(r io.Reader) (*Manifest, error) {
	br := bufio.NewReader(r)
	m := &Manifest{}

	// metadata lines come first
	for {
		peek, err := br.Peek(1)
		if err != nil || peek[0] != '#' {
			break
		}
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read manifest metadata: %w", err)
		}
		if err := m.setMeta(strings.TrimSpace(strings.TrimPrefix(line, "#"))); err != nil {
			return nil, err
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err == io.EOF {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest header: %w", err)
	}
	if strings.Join(header, ",") != strings.Join(csvHeader, ",") {
		return nil, fmt.Errorf("unexpected manifest header %v", header)
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest row %d: %w", len(m.Entries), err)
		}

		index, err := strconv.ParseUint(record[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid chunk index %q: %w", record[0], err)
		}
		size, err := strconv.ParseUint(record[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chunk size %q: %w", record[2], err)
		}
		m.Entries = append(m.Entries, Entry{
			Index:  uint32(index),
			Name:   record[1],
			Size:   size,
			Digest: record[3],
			Unit:   record[4],
		})
	}
	return m, nil
}

func (m *Manifest) setMeta(line string) error {
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return nil
	}
	value = strings.TrimSpace(value)

	var err error
	switch strings.TrimSpace(key) {
	case "source":
		m.Source = value
	case "source_size":
		m.SourceSize, err = strconv.ParseInt(value, 10, 64)
	case "mode":
		m.Mode = value
	case "budget":
		m.Budget, err = strconv.ParseUint(value, 10, 64)
	case "trailing_terminator":
		m.TrailingTerminator, err = strconv.ParseBool(value)
	case "root":
		m.Root = value
	case "created_at":
		m.CreatedAt, err = time.Parse(time.RFC3339, value)
	}
	if err != nil {
		return fmt.Errorf("invalid manifest field %q: %w", key, err)
	}
	return nil
}

// WriteCSVFile writes m to path.
func WriteCSVFile(path string, m *Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest %q: %w", path, err)
	}
	if err := WriteCSV(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadCSVFile reads a manifest from path.
func ReadCSVFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %q: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}
