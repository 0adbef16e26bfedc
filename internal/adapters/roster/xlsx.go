package roster

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/podium/internal/domain/model"
)

var (
	idHeaders   = []string{"id", "team_id", "teamid"}
	nameHeaders = []string{"name", "team_name", "teamname", "team"}
	tagHeaders  = []string{"tag", "team_tag", "teamtag", "abbr", "short"}
)

// ParseXLSX reads a workbook where each sheet is one competition, named by its
// ID, with a header row naming id, name and tag columns. Rows without an id
// are skipped.
func ParseXLSX(r io.Reader) (*Static, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoster, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidRoster)
	}

	out := make(map[string][]model.RegisteredTeam, len(sheets))
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %s: %v", ErrInvalidRoster, sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		header := rows[0]
		idIdx := findColumn(header, idHeaders)
		nameIdx := findColumn(header, nameHeaders)
		tagIdx := findColumn(header, tagHeaders)
		if idIdx < 0 || nameIdx < 0 {
			return nil, fmt.Errorf("%w: sheet %s needs id and name columns", ErrInvalidRoster, sheet)
		}

		teams := make([]model.RegisteredTeam, 0, len(rows)-1)
		for _, row := range rows[1:] {
			id := cell(row, idIdx)
			if id == "" {
				continue
			}
			teams = append(teams, model.RegisteredTeam{ID: id, Name: cell(row, nameIdx), Tag: cell(row, tagIdx)})
		}
		if err := validate(sheet, teams); err != nil {
			return nil, err
		}
		out[strings.TrimSpace(sheet)] = teams
	}

	return NewStatic(out), nil
}

// LoadXLSX reads an XLSX roster file.
func LoadXLSX(path string) (*Static, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer fh.Close()
	return ParseXLSX(fh)
}

func findColumn(header []string, names []string) int {
	for i, h := range header {
		h = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
