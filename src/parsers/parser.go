// backend/src/parsers/parser.go
package parsers

import (
	"fmt"
	"io"
	"strings"

	"github.com/username/budgetvisor/backend/src/models"
	"github.com/username/budgetvisor/backend/src/parsers/simplifi"
)

// Parser converts one actuals export format into normalized ActualRecords.
type Parser interface {
	Parse(file io.Reader) ([]models.ActualRecord, error)
}

// GetParser returns the parser registered for the given export source.
func GetParser(source string) (Parser, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "simplifi":
		return simplifi.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser registered for source %q", source)
	}
}
