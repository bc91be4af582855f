// Package mappingcsv reads and writes the curated name-mapping CSV files.
// The files are the human editing surface: automation only ever appends rows
// for unseen ids, so hand-filled columns survive every sync.
package mappingcsv

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jszwec/csvutil"

	"github.com/avolkov/linesync/internal/domain/mapping"
)

// ReadTeams loads the team mapping file. A missing file is an empty mapping,
// not an error, so first runs can bootstrap it.
func ReadTeams(path string) ([]mapping.TeamMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read team mapping file: %w", err)
	}

	var rows []mapping.TeamMapping
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse team mapping file %s: %w", path, err)
	}

	return rows, nil
}

func ReadLeagues(path string) ([]mapping.LeagueMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read league mapping file: %w", err)
	}

	var rows []mapping.LeagueMapping
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse league mapping file %s: %w", path, err)
	}

	return rows, nil
}

// WriteTeams persists the mapping sorted by team id so diffs stay reviewable.
func WriteTeams(path string, rows []mapping.TeamMapping) error {
	sorted := append([]mapping.TeamMapping(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TeamID < sorted[j].TeamID })

	data, err := csvutil.Marshal(sorted)
	if err != nil {
		return fmt.Errorf("encode team mapping file: %w", err)
	}

	return writeFile(path, data)
}

func WriteLeagues(path string, rows []mapping.LeagueMapping) error {
	sorted := append([]mapping.LeagueMapping(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LeagueID < sorted[j].LeagueID })

	data, err := csvutil.Marshal(sorted)
	if err != nil {
		return fmt.Errorf("encode league mapping file: %w", err)
	}

	return writeFile(path, data)
}

// ExtendTeams appends rows for ids not present yet and reports how many were
// added. Existing rows are never touched.
func ExtendTeams(path string, candidates []mapping.TeamMapping) (int, error) {
	existing, err := ReadTeams(path)
	if err != nil {
		return 0, err
	}

	seen := make(map[int64]struct{}, len(existing))
	for _, row := range existing {
		seen[row.TeamID] = struct{}{}
	}

	added := 0
	for _, row := range candidates {
		if _, ok := seen[row.TeamID]; ok {
			continue
		}
		seen[row.TeamID] = struct{}{}
		existing = append(existing, row)
		added++
	}
	if added == 0 && len(existing) > 0 {
		return 0, nil
	}

	if err := WriteTeams(path, existing); err != nil {
		return 0, err
	}
	return added, nil
}

func ExtendLeagues(path string, candidates []mapping.LeagueMapping) (int, error) {
	existing, err := ReadLeagues(path)
	if err != nil {
		return 0, err
	}

	seen := make(map[int64]struct{}, len(existing))
	for _, row := range existing {
		seen[row.LeagueID] = struct{}{}
	}

	added := 0
	for _, row := range candidates {
		if _, ok := seen[row.LeagueID]; ok {
			continue
		}
		seen[row.LeagueID] = struct{}{}
		existing = append(existing, row)
		added++
	}
	if added == 0 && len(existing) > 0 {
		return 0, nil
	}

	if err := WriteLeagues(path, existing); err != nil {
		return 0, err
	}
	return added, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create mapping directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write mapping file %s: %w", path, err)
	}
	return nil
}
