package orm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load decodes every YAML document in r as a Description and initializes it.
func Load(r io.Reader) ([]*Description, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var descs []*Description
	for {
		d := &Description{}
		err := dec.Decode(d)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("orm: decode description: %w", err)
		}
		if err := d.Init(); err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// LoadFile loads the descriptions of a single YAML file.
func LoadFile(path string) ([]*Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("orm: %w", err)
	}
	defer f.Close()
	descs, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return descs, nil
}

// LoadDir loads every *.yaml and *.yml file of dir, in lexical file order.
// Description names must be unique across the directory.
func LoadDir(dir string) ([]*Description, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("orm: %w", err)
	}
	var files []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	var (
		all  []*Description
		seen = make(map[string]string)
	)
	for _, file := range files {
		descs, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		for _, d := range descs {
			if prev, ok := seen[d.Name]; ok {
				return nil, fmt.Errorf("orm: description %q declared in %s and %s", d.Name, prev, file)
			}
			seen[d.Name] = file
		}
		all = append(all, descs...)
	}
	return all, nil
}
