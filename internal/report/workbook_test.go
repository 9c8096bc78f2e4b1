package report

import (
	"bytes"
	"testing"

	"seatplan/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func occ(name, subject string) *models.Occupant {
	return &models.Occupant{Name: name, Subject: subject}
}

func sampleResult() *models.PlacementResult {
	return &models.PlacementResult{
		RunID: "run-1",
		Seed:  42,
		Rooms: []models.RoomResult{
			{
				RoomName:      "AS3",
				Door:          models.DoorLeft,
				Capacity:      4,
				OccupantCount: 3,
				EmptyCount:    1,
				FillRate:      75,
				SubjectCounts: map[string]int{"Physics": 1, "Math": 2},
				Sections: map[models.Section][][]*models.Occupant{
					models.SectionLeft: {
						{occ("Awa", "Math"), nil},
					},
					models.SectionRight: {
						{occ("Binta", "Physics"), occ("Cheikh", "Math")},
					},
				},
			},
			{
				RoomName:      "ISEL1",
				Door:          models.DoorRight,
				Capacity:      30,
				SubjectCounts: map[string]int{},
				Sections:      map[models.Section][][]*models.Occupant{},
			},
		},
		Unplaced: []models.Unplaced{{Student: "Dame", Subject: "Math"}},
		Summary: models.CapacitySummary{
			TotalStudents: 4,
			TotalCapacity: 34,
			Placed:        3,
			UnplacedCount: 1,
			Utilization:   8.8235,
		},
		Warnings: []string{"first room alone can seat every student"},
	}
}

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func value(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}

func TestExportWorkbook_Sheets(t *testing.T) {
	data, err := ExportWorkbook(sampleResult())
	require.NoError(t, err)

	f := open(t, data)
	// 空考场不生成座位表
	assert.Equal(t, []string{"Summary", "AS3"}, f.GetSheetList())
}

func TestExportWorkbook_Summary(t *testing.T) {
	data, err := ExportWorkbook(sampleResult())
	require.NoError(t, err)
	f := open(t, data)

	assert.Equal(t, "Room", value(t, f, "Summary", "A1"))
	assert.Equal(t, "AS3", value(t, f, "Summary", "A2"))
	assert.Equal(t, "left", value(t, f, "Summary", "B2"))
	assert.Equal(t, "4", value(t, f, "Summary", "C2"))
	assert.Equal(t, "3", value(t, f, "Summary", "D2"))
	assert.Equal(t, "75", value(t, f, "Summary", "F2"))
	assert.Equal(t, "Math: 2, Physics: 1", value(t, f, "Summary", "H2"))
	assert.Equal(t, "ISEL1", value(t, f, "Summary", "A3"))

	rows, err := f.GetRows("Summary")
	require.NoError(t, err)

	var labels []string
	for _, r := range rows {
		if len(r) > 0 {
			labels = append(labels, r[0])
		}
	}
	assert.Contains(t, labels, "Total students")
	assert.Contains(t, labels, "Warning")
	assert.Contains(t, labels, "Unplaced student")
	assert.Contains(t, labels, "Dame")
	assert.NotContains(t, labels, "Shortfall")
}

func TestExportWorkbook_RoomGrid(t *testing.T) {
	data, err := ExportWorkbook(sampleResult())
	require.NoError(t, err)
	f := open(t, data)

	// A: Row | B-C: left | D: 过道 | E-F: right
	assert.Equal(t, "Row", value(t, f, "AS3", "A1"))
	assert.Equal(t, "left 1", value(t, f, "AS3", "B1"))
	assert.Equal(t, "left 2", value(t, f, "AS3", "C1"))
	assert.Equal(t, "", value(t, f, "AS3", "D1"))
	assert.Equal(t, "right 1", value(t, f, "AS3", "E1"))

	assert.Equal(t, "1", value(t, f, "AS3", "A2"))
	assert.Equal(t, "Awa (Math)", value(t, f, "AS3", "B2"))
	assert.Equal(t, "", value(t, f, "AS3", "C2"))
	assert.Equal(t, "Binta (Physics)", value(t, f, "AS3", "E2"))
	assert.Equal(t, "Cheikh (Math)", value(t, f, "AS3", "F2"))
}

func TestExportWorkbook_Nil(t *testing.T) {
	_, err := ExportWorkbook(nil)
	assert.Error(t, err)
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]bool{"summary": true}

	assert.Equal(t, "A_B", uniqueSheetName("A/B", used))
	assert.Equal(t, "Summary (2)", uniqueSheetName("Summary", used))
	assert.Equal(t, "A_B (2)", uniqueSheetName("A/B", used))

	long := uniqueSheetName("Amphitheatre principal du batiment central", used)
	assert.Len(t, []rune(long), 31)
	assert.Equal(t, "Room", uniqueSheetName("", used))
}
