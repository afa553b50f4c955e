package crawler

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/text/unicode/norm"
)

// Dictionary translates raw model titles using a user supplied JSON object
type Dictionary map[string]string

// LoadDictionary reads a JSON object of title translations. A missing file
// yields an empty dictionary.
func LoadDictionary(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Dictionary{}, nil
	}
	if err != nil {
		return Dictionary{}, fmt.Errorf("read dictionary: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return Dictionary{}, fmt.Errorf("parse dictionary %s: %w", path, err)
	}

	d := make(Dictionary, len(raw))
	for k, v := range raw {
		d[norm.NFC.String(k)] = v
	}
	return d, nil
}

// Translate returns the translation of word, or word itself
func (d Dictionary) Translate(word string) string {
	if v, ok := d[norm.NFC.String(word)]; ok {
		return v
	}
	return word
}
