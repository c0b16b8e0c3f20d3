package ai

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Labels maps class ids to the characters they stand for.
type Labels []string

// DefaultAlphabet is used when neither a labels file nor model metadata names the classes.
var DefaultAlphabet = Labels{
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
}

// Name returns the label for classID, or classN when the id is out of range.
func (l Labels) Name(classID int) string {
	if classID >= 0 && classID < len(l) && l[classID] != "" {
		return l[classID]
	}
	return fmt.Sprintf("class%d", classID)
}

// LoadLabels reads class names from a dataset YAML (names as list or index map)
// or from a plain text file with one label per line.
func LoadLabels(path string) (Labels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseDatasetYAML(data)
	default:
		return parseLabelLines(data)
	}
}

func parseDatasetYAML(data []byte) (Labels, error) {
	var doc struct {
		Names yaml.Node `yaml:"names"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse labels yaml: %w", err)
	}

	switch doc.Names.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := doc.Names.Decode(&names); err != nil {
			return nil, fmt.Errorf("failed to decode names list: %w", err)
		}
		return Labels(names), nil
	case yaml.MappingNode:
		var names map[int]string
		if err := doc.Names.Decode(&names); err != nil {
			return nil, fmt.Errorf("failed to decode names map: %w", err)
		}
		return labelsFromIndex(names)
	default:
		return nil, fmt.Errorf("labels yaml has no names list or map")
	}
}

func parseLabelLines(data []byte) (Labels, error) {
	var labels Labels
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			labels = append(labels, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file is empty")
	}
	return labels, nil
}

// ParseMetadataNames parses the names entry exported models carry in their metadata,
// e.g. "{0: '0', 1: '1', 2: 'A'}". The string is a YAML flow mapping.
func ParseMetadataNames(s string) (Labels, error) {
	var names map[int]string
	if err := yaml.Unmarshal([]byte(s), &names); err != nil {
		return nil, fmt.Errorf("failed to parse model names: %w", err)
	}
	return labelsFromIndex(names)
}

func labelsFromIndex(names map[int]string) (Labels, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no class names found")
	}

	maxID := -1
	for id := range names {
		if id < 0 {
			return nil, fmt.Errorf("negative class id %d", id)
		}
		if id > maxID {
			maxID = id
		}
	}

	labels := make(Labels, maxID+1)
	for id, name := range names {
		labels[id] = name
	}
	return labels, nil
}
