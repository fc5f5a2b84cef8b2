package labels

import (
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"slices"
	"strconv"
	"strings"
)

// ErrMappingParse is returned for any mapping file that cannot be turned into
// an IDLabelMap.
var ErrMappingParse = errors.New("parsing id to label mapping")

// IDLabelMap maps emotion IDs to emotion names.
type IDLabelMap struct {
	names map[int]string
	// order is the file order of the IDs. Reverse relies on it so that a
	// name listed twice resolves to its last ID.
	order []int
}

// NewIDLabelMap builds a mapping from ids in ascending order.
func NewIDLabelMap(names map[int]string) IDLabelMap {
	m := IDLabelMap{names: make(map[int]string, len(names))}
	for id, name := range names {
		m.names[id] = name
		m.order = append(m.order, id)
	}
	slices.Sort(m.order)
	return m
}

// Len returns the number of IDs in the mapping.
func (m IDLabelMap) Len() int {
	return len(m.names)
}

// IDs returns the mapping's IDs in ascending order.
func (m IDLabelMap) IDs() []int {
	ids := slices.Clone(m.order)
	slices.Sort(ids)
	return ids
}

// Reverse returns the emotion name to ID lookup used when scanning columns.
func (m IDLabelMap) Reverse() map[string]int {
	reverse := make(map[string]int, len(m.names))
	for _, id := range m.order {
		reverse[m.names[id]] = id
	}
	return reverse
}

// LoadMapping reads a YAML id to label file from path.
func LoadMapping(path string) (IDLabelMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return IDLabelMap{}, fmt.Errorf("%w: reading %q: %w", ErrMappingParse, path, err)
	}

	m, err := ParseMapping(data)
	if err != nil {
		return IDLabelMap{}, fmt.Errorf("%q: %w", path, err)
	}
	return m, nil
}

// ParseMapping decodes a YAML document of the form
//
//	0: admiration
//	"1": amusement
//
// Keys may be written as integers or strings but must parse as integers.
func ParseMapping(data []byte) (IDLabelMap, error) {
	var doc yaml.Node
	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return IDLabelMap{}, fmt.Errorf("%w: %w", ErrMappingParse, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return IDLabelMap{}, fmt.Errorf("%w: empty document", ErrMappingParse)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return IDLabelMap{}, fmt.Errorf("%w: line %d: expected a mapping of id to label", ErrMappingParse, root.Line)
	}

	m := IDLabelMap{names: make(map[int]string, len(root.Content)/2)}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return IDLabelMap{}, fmt.Errorf("%w: line %d: key is not a scalar", ErrMappingParse, key.Line)
		}

		id, err := strconv.Atoi(strings.TrimSpace(key.Value))
		if err != nil {
			return IDLabelMap{}, fmt.Errorf("%w: line %d: key %q is not an integer", ErrMappingParse, key.Line, key.Value)
		}
		if value.Kind != yaml.ScalarNode {
			return IDLabelMap{}, fmt.Errorf("%w: line %d: label for id %d is not a scalar", ErrMappingParse, value.Line, id)
		}
		if _, dup := m.names[id]; dup {
			return IDLabelMap{}, fmt.Errorf("%w: line %d: duplicate id %d", ErrMappingParse, key.Line, id)
		}

		m.names[id] = value.Value
		m.order = append(m.order, id)
	}

	return m, nil
}
