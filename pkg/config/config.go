// INI-style configuration with include support and access tracking
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Config provides access to a configuration file with access tracking.
type Config struct {
	mu       sync.RWMutex
	sections map[string]*Section
	order    []string // section order of first appearance

	accessedSections map[string]struct{}
}

// New creates a new empty Config.
func New() *Config {
	return &Config{
		sections:         make(map[string]*Section),
		accessedSections: make(map[string]struct{}),
	}
}

// Load reads a configuration file. Sections named [include <glob>] pull in
// other files relative to the including file.
func Load(path string) (*Config, error) {
	c := New()
	if err := c.parseFile(path, make(map[string]bool)); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadString parses a configuration from a string. Include sections are
// resolved relative to the working directory.
func LoadString(data string) (*Config, error) {
	c := New()
	if err := c.parse(strings.NewReader(data), "<string>", ".", make(map[string]bool)); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) parseFile(path string, visited map[string]bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return NewConfigError("", "", fmt.Sprintf("invalid path %s: %v", path, err))
	}
	if visited[abs] {
		return NewConfigError("", "", "recursive include: "+path)
	}
	visited[abs] = true
	defer func() { visited[abs] = false }()

	f, err := os.Open(abs)
	if err != nil {
		return WrapError("", "", err)
	}
	defer f.Close()
	return c.parse(f, path, filepath.Dir(abs), visited)
}

func (c *Config) parse(r io.Reader, name, dir string, visited map[string]bool) error {
	var section string
	var options map[string]string
	flush := func() {
		if section != "" {
			c.addSection(section, options)
		}
		section, options = "", nil
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			flush()
			header := strings.Join(strings.Fields(line[1:len(line)-1]), " ")
			if header == "" {
				return NewConfigError("", "", fmt.Sprintf("empty section header at line %d in %s", lineNum, name))
			}
			if spec, ok := strings.CutPrefix(header, "include "); ok {
				if err := c.include(dir, spec, visited); err != nil {
					return err
				}
				continue
			}
			section, options = header, make(map[string]string)
			continue
		}

		if section == "" {
			return NewConfigError("", "", fmt.Sprintf("option outside of a section at line %d in %s", lineNum, name))
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			key, value, ok = strings.Cut(line, "=")
		}
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return NewConfigError(section, "", fmt.Sprintf("malformed line %d in %s: %q", lineNum, name, line))
		}
		options[key] = strings.TrimSpace(value)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return WrapError("", "", err)
	}
	return nil
}

func (c *Config) include(dir, spec string, visited map[string]bool) error {
	glob := filepath.Join(dir, spec)
	matches, err := filepath.Glob(glob)
	if err != nil {
		return NewConfigError("", "", fmt.Sprintf("invalid include pattern %q: %v", spec, err))
	}
	sort.Strings(matches)
	if len(matches) == 0 && !strings.ContainsAny(glob, "*?[") {
		return NewConfigError("", "", "include file does not exist: "+glob)
	}
	for _, m := range matches {
		if err := c.parseFile(m, visited); err != nil {
			return err
		}
	}
	return nil
}

// addSection adds a section, merging options into an existing one.
func (c *Config) addSection(name string, options map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.sections[name]; ok {
		for k, v := range options {
			existing.options[strings.ToLower(k)] = v
		}
		return
	}
	c.sections[name] = newSection(name, options)
	c.order = append(c.order, name)
}

// GetSection returns a Section by name, or an error if not found.
func (c *Config) GetSection(name string) (*Section, error) {
	if sec := c.GetSectionOptional(name); sec != nil {
		return sec, nil
	}
	return nil, ErrMissingSection(name)
}

// GetSectionOptional returns a Section if it exists, or nil if not.
func (c *Config) GetSectionOptional(name string) *Section {
	c.mu.Lock()
	defer c.mu.Unlock()

	sec, ok := c.sections[name]
	if ok {
		c.accessedSections[name] = struct{}{}
	}
	return sec
}

// HasSection checks if a section exists.
func (c *Config) HasSection(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.sections[name]
	return ok
}

// GetSectionNames returns all section names in order.
func (c *Config) GetSectionNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

// GetPrefixSections returns, in file order, the sections whose first word
// is prefix, e.g. "cut" matches [cut wing_root].
func (c *Config) GetPrefixSections(prefix string) []*Section {
	c.mu.Lock()
	defer c.mu.Unlock()

	var result []*Section
	for _, name := range c.order {
		if first, _, _ := strings.Cut(name, " "); first == prefix {
			c.accessedSections[name] = struct{}{}
			result = append(result, c.sections[name])
		}
	}
	return result
}

// GetUnusedSections returns the sections that were never accessed.
func (c *Config) GetUnusedSections() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []string
	for name := range c.sections {
		if _, ok := c.accessedSections[name]; !ok {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}

// CheckUnused reports unknown sections and options: anything present in
// the file that no loader read.
func (c *Config) CheckUnused() error {
	if unused := c.GetUnusedSections(); len(unused) > 0 {
		return NewConfigError("", "", fmt.Sprintf("unknown sections %v", unused))
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	var msgs []string
	for _, name := range c.order {
		if unused := c.sections[name].GetUnusedOptions(); len(unused) > 0 {
			msgs = append(msgs, fmt.Sprintf("[%s]: unknown options %v", name, unused))
		}
	}
	if len(msgs) > 0 {
		return NewConfigError("", "", strings.Join(msgs, "; "))
	}
	return nil
}
