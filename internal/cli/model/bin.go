package model

import "github.com/google/uuid"

// Bin: пользовательская категория, в которую разбираются записи.
type Bin struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewBin создаёт bin с новым идентификатором.
func NewBin(name, description string) Bin {
	return Bin{ID: uuid.NewString(), Name: name, Description: description}
}

// DefaultBins: bins, создаваемые при первом запуске, каждый с новым id.
func DefaultBins() []Bin {
	return []Bin{
		NewBin("Tasks", "Actionable items"),
		NewBin("Ideas", "Thoughts and concepts"),
		NewBin("Read/Watch", "Content to consume"),
	}
}
