package mappingcsv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avolkov/linesync/internal/domain/mapping"
)

func TestReadTeamsMissingFile(t *testing.T) {
	t.Parallel()

	rows, err := ReadTeams(filepath.Join(t.TempDir(), "absent.csv"))
	if err != nil {
		t.Fatalf("ReadTeams: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("got %d rows, want 0", len(rows))
	}
}

func TestWriteAndReadTeamsRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "team_name_matching.csv")
	in := []mapping.TeamMapping{
		{TeamID: 19, TeamName: "Arsenal", OAName: "Arsenal"},
		{TeamID: 6, TeamName: "Tottenham Hotspur", OAName: "Tottenham Hotspur"},
		{TeamID: 52, TeamName: "Crystal Palace", OAName: ""},
	}

	if err := WriteTeams(path, in); err != nil {
		t.Fatalf("WriteTeams: %v", err)
	}

	out, err := ReadTeams(path)
	if err != nil {
		t.Fatalf("ReadTeams: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d rows, want 3", len(out))
	}
	if out[0].TeamID != 6 || out[1].TeamID != 19 || out[2].TeamID != 52 {
		t.Fatalf("rows not sorted by team id: %+v", out)
	}
	if out[2].OAName != "" {
		t.Fatalf("empty curated column changed: %+v", out[2])
	}
}

func TestWriteTeamsHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "team_name_matching.csv")
	if err := WriteTeams(path, []mapping.TeamMapping{{TeamID: 1, TeamName: "A"}}); err != nil {
		t.Fatalf("WriteTeams: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	firstLine := strings.SplitN(string(data), "\n", 2)[0]
	if strings.TrimSpace(firstLine) != "team_id,team_name,oa_name" {
		t.Fatalf("unexpected header %q", firstLine)
	}
}

func TestExtendTeamsAppendsOnly(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "team_name_matching.csv")
	seed := []mapping.TeamMapping{
		{TeamID: 19, TeamName: "Arsenal", OAName: "Arsenal FC"},
	}
	if err := WriteTeams(path, seed); err != nil {
		t.Fatalf("WriteTeams: %v", err)
	}

	added, err := ExtendTeams(path, []mapping.TeamMapping{
		{TeamID: 19, TeamName: "Arsenal", OAName: ""},
		{TeamID: 6, TeamName: "Tottenham Hotspur", OAName: ""},
	})
	if err != nil {
		t.Fatalf("ExtendTeams: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}

	rows, err := ReadTeams(path)
	if err != nil {
		t.Fatalf("ReadTeams: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1].TeamID != 19 || rows[1].OAName != "Arsenal FC" {
		t.Fatalf("curated row overwritten: %+v", rows[1])
	}
}

func TestExtendTeamsNoChangesLeavesFileAlone(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "team_name_matching.csv")
	if err := WriteTeams(path, []mapping.TeamMapping{{TeamID: 1, TeamName: "A", OAName: "A"}}); err != nil {
		t.Fatalf("WriteTeams: %v", err)
	}
	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	added, err := ExtendTeams(path, []mapping.TeamMapping{{TeamID: 1, TeamName: "A"}})
	if err != nil {
		t.Fatalf("ExtendTeams: %v", err)
	}
	if added != 0 {
		t.Fatalf("added = %d, want 0", added)
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatal("file rewritten without changes")
	}
}

func TestExtendLeaguesBootstrapsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "league_mapping.csv")
	added, err := ExtendLeagues(path, []mapping.LeagueMapping{
		{LeagueID: 8, LeagueName: "Premier League", SportKey: ""},
	})
	if err != nil {
		t.Fatalf("ExtendLeagues: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}

	rows, err := ReadLeagues(path)
	if err != nil {
		t.Fatalf("ReadLeagues: %v", err)
	}
	if len(rows) != 1 || rows[0].LeagueID != 8 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}
