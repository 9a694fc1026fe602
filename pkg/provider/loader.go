package provider

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// ReadText parses tab separated candidates, one per line:
//
//	name <TAB> properties <TAB> scope <TAB> depth <TAB> prefix <TAB> arguments <TAB> postfix
//
// Only the name is required. Properties are separated by '|' or ','; a leading '!'
// on the properties field marks the candidate as out of context. Blank lines and
// lines starting with '#' are skipped.
func ReadText(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		rec := Record{Name: strings.TrimSpace(fields[0])}
		if rec.Name == "" {
			return nil, fmt.Errorf("line %d: %w", lineNo, ErrEmptyName)
		}
		field := func(i int) string {
			if i < len(fields) {
				return strings.TrimSpace(fields[i])
			}
			return ""
		}
		props := field(1)
		if strings.HasPrefix(props, "!") {
			rec.OutOfContext = true
			props = props[1:]
		}
		rec.Properties = strings.FieldsFunc(props, func(r rune) bool { return r == '|' || r == ',' })
		rec.Scope = field(2)
		if d := field(3); d != "" {
			depth, err := strconv.Atoi(d)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid depth %q: %w", lineNo, d, err)
			}
			rec.InheritanceDepth = depth
		}
		rec.Prefix = field(4)
		rec.Arguments = field(5)
		rec.Postfix = field(6)
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}
	return records, nil
}

// ReadMsgpack decodes a msgpack array of records.
func ReadMsgpack(r io.Reader) ([]Record, error) {
	var records []Record
	if err := msgpack.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode candidates: %w", err)
	}
	return records, nil
}

// WriteMsgpack encodes records in the format ReadMsgpack reads.
func WriteMsgpack(w io.Writer, records []Record) error {
	if err := msgpack.NewEncoder(w).Encode(records); err != nil {
		return fmt.Errorf("failed to encode candidates: %w", err)
	}
	return nil
}

// LoadFile reads every record from a candidate file of any supported format.
func LoadFile(path string) ([]Record, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open candidate file %s: %w", path, err)
	}
	defer file.Close()

	var records []Record
	switch format {
	case FormatText:
		records, err = ReadText(bufio.NewReader(file))
	case FormatMsgpack:
		records, err = ReadMsgpack(bufio.NewReader(file))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("Loaded %d candidates from %s (%s)", len(records), path, format)
	return records, nil
}

// CandidateFiles lists the supported candidate files in dir, sorted by name.
func CandidateFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for candidate files: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, info := range supportedFormats {
			if slices.Contains(info.Extensions, ext) {
				files = append(files, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	slices.Sort(files)
	return files, nil
}

// LoadInto adds the records of path to s, tagged with path as their origin.
// A directory loads every candidate file inside it; unreadable files are skipped with a warning.
func LoadInto(s *Store, path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	files := []string{path}
	if info.IsDir() {
		if files, err = CandidateFiles(path); err != nil {
			return 0, err
		}
		if len(files) == 0 {
			return 0, fmt.Errorf("no candidate files found in %s", path)
		}
	}

	total := 0
	for _, f := range files {
		records, err := LoadFile(f)
		if err != nil {
			if !info.IsDir() {
				return total, err
			}
			log.Warnf("Skipping candidate file %s: %v", f, err)
			continue
		}
		ids, err := s.AddFrom(f, records...)
		if err != nil {
			if !info.IsDir() {
				return total, fmt.Errorf("%s: %w", f, err)
			}
			log.Warnf("Skipping candidate file %s: %v", f, err)
			continue
		}
		total += len(ids)
	}
	return total, nil
}
