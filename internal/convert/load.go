package convert

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hpungsan/pfncards/internal/card"
	"github.com/hpungsan/pfncards/internal/errors"
)

// LoadCards reads a JSON array of cards, such as the one Convert writes.
// Extra fields (an "id", for instance) are ignored; every entry needs a
// non-empty easy and hard term.
func LoadCards(path string) ([]card.Card, error) {
	if path == "" {
		return nil, errors.NewInvalidRequest("input path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to read %s: %w", path, err))
	}

	var cards []card.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("%s is not a JSON array of cards: %v", path, err))
	}

	for i, c := range cards {
		if !c.Valid() {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("%s: entry %d: easy and hard are required", path, i+1))
		}
	}

	if cards == nil {
		cards = []card.Card{}
	}
	return cards, nil
}
