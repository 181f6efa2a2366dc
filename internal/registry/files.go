package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"mnavcli/internal/mnav"
	"mnavcli/pkg/contracts/domain"
)

// FileLoader reads the company roster from a local JSON file. It backs the
// calculator CLI and any deployment without Sheets access.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader over the given JSON file.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Load parses the file as a JSON array of companies.
func (l *FileLoader) Load(ctx context.Context) ([]domain.Company, error) {
	var companies []domain.Company
	if err := readJSONFile(l.path, &companies); err != nil {
		return nil, fmt.Errorf("failed to load companies: %w", err)
	}
	return companies, nil
}

// LoadActions parses a JSON array of corporate actions. A missing file is
// not an error; it means no splits are on record.
func LoadActions(path string) ([]domain.CorporateAction, error) {
	var actions []domain.CorporateAction
	if err := readJSONFile(path, &actions); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load corporate actions: %w", err)
	}
	return actions, nil
}

// LoadStaticQuotes parses a JSON object mapping ticker to static quote.
// A missing file yields an empty map.
func LoadStaticQuotes(path string) (map[string]mnav.StaticQuote, error) {
	quotes := make(map[string]mnav.StaticQuote)
	if err := readJSONFile(path, &quotes); err != nil {
		if os.IsNotExist(err) {
			return map[string]mnav.StaticQuote{}, nil
		}
		return nil, fmt.Errorf("failed to load static quotes: %w", err)
	}
	return quotes, nil
}

// LoadOverrides parses a JSON object mapping ticker to market-cap override.
// A missing file yields an empty map.
func LoadOverrides(path string) (map[string]mnav.QuoteOverride, error) {
	overrides := make(map[string]mnav.QuoteOverride)
	if err := readJSONFile(path, &overrides); err != nil {
		if os.IsNotExist(err) {
			return map[string]mnav.QuoteOverride{}, nil
		}
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}
	return overrides, nil
}

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
