package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/puzzlescore/internal/model"
	"github.com/verte-zerg/puzzlescore/internal/roster"
	"github.com/verte-zerg/puzzlescore/internal/stats"
)

func sampleReport() stats.Report {
	keith := model.NewPlayerData()
	keith.DailyScores["2024-02-01"] = model.DailyScore{
		Date: "2024-02-01", Wordle: 2, Connections: 3, Strands: 2, Total: 7,
		BonusPoints: model.BonusPoints{WordleQuick: true},
		Finalized:   true,
	}
	keith.Total = 7
	keith.TotalBonuses.Wordle = 1
	mike := model.NewPlayerData()
	mike.DailyScores["2024-02-02"] = model.DailyScore{Date: "2024-02-02", Connections: 2, Strands: 1, Total: 3}
	mike.Total = 3
	return stats.NewReport("2024-02", model.PlayerScores{"player1": keith, "player2": mike}, roster.Default())
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWriteProducesAllSheets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport()))

	f := openWorkbook(t, buf.Bytes())
	require.Equal(t, []string{SheetStandings, SheetDaily, SheetGames}, f.GetSheetList())

	standings, err := f.GetRows(SheetStandings)
	require.NoError(t, err)
	require.Len(t, standings, 5)
	require.Equal(t, []string{"1", "Keith", "7", "1", "7", "1", "0", "0"}, standings[1])
	require.Equal(t, "Mike", standings[2][1])

	daily, err := f.GetRows(SheetDaily)
	require.NoError(t, err)
	require.Len(t, daily, 3)
	require.Equal(t, []string{"2024-02-01", "Keith", "2", "3", "2", "7", "TRUE", "FALSE", "FALSE", "TRUE"}, daily[1])
	require.Equal(t, "2024-02-02", daily[2][0])
	require.Equal(t, "Mike", daily[2][1])

	games, err := f.GetRows(SheetGames)
	require.NoError(t, err)
	require.Equal(t, []string{"Player", "Wordle", "Connections", "Strands", "Total"}, games[0])
	require.Equal(t, []string{"Mike", "0", "2", "1", "3"}, games[2])
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "2024-02.xlsx")
	require.NoError(t, WriteFile(path, sampleReport()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(SheetGames)
	require.NoError(t, err)
	require.Len(t, rows, 5)
}

func TestEmptyMonthHasHeadersOnly(t *testing.T) {
	report := stats.NewReport("2024-02", model.PlayerScores{}, roster.Default())
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, report))

	f := openWorkbook(t, buf.Bytes())
	daily, err := f.GetRows(SheetDaily)
	require.NoError(t, err)
	require.Len(t, daily, 1)
}
