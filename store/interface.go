// Package store keeps expected-output specifications keyed by assignment.
package store

import (
	"bytes"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/criyle/go-nbjudge/grader"
	"github.com/goccy/go-yaml"
)

const randIDLength = 12

// SpecFileName is the base name of a stored specification
const SpecFileName = "expected_output"

var (
	// ErrNotFound is returned when no specification exists for the assignment
	ErrNotFound = errors.New("specification not found")

	errInvalidID            = errors.New("invalid assignment id")
	errUniqueIDNotGenerated = errors.New("unique id does not exists after tried 50 times")

	validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// Entry is a stored specification
type Entry struct {
	ID   string       // assignment id
	Name string       // file name, determines the format
	Spec *grader.Spec // validated specification
}

// SpecStore defines interface to store expected-output specifications
type SpecStore interface {
	Add(name string, content []byte) (string, error) // Add validates and stores under a generated id
	Put(id, name string, content []byte) error       // Put validates and stores under the assignment id
	Get(id string) (*Entry, error)                   // Get returns ErrNotFound if not exists
	Remove(id string) bool                           // Remove deletes by id
	List() map[string]string                         // List returns id to file name
}

// Decode parses a specification, files ending in .yaml / .yml are yaml,
// everything else is json
func Decode(name string, content []byte) (*grader.Spec, error) {
	if isYAML(name) {
		j, err := yaml.YAMLToJSON(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		content = j
	}
	s, err := grader.ParseSpec(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

// LoadSpecFile reads and parses a single specification file
func LoadSpecFile(path string) (*grader.Spec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(filepath.Base(path), b)
}

func isYAML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// fileName normalizes the stored name while keeping the format
func fileName(name string) string {
	if isYAML(name) {
		return SpecFileName + ".yaml"
	}
	return SpecFileName + ".json"
}

func checkID(id string) error {
	if !validID.MatchString(id) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", errInvalidID, id)
	}
	return nil
}

func generateID() (string, error) {
	b := make([]byte, randIDLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := base32.NewEncoder(base32.StdEncoding, &buf).Write(b); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func generateUniqueID(isExists func(string) bool) (string, error) {
	for range [50]struct{}{} {
		id, err := generateID()
		if err != nil {
			return "", err
		}
		if !isExists(id) {
			return id, nil
		}
	}
	return "", errUniqueIDNotGenerated
}
