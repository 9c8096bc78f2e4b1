package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"seatplan/internal/models"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

// SummaryHeader 汇总表表头
var SummaryHeader = []string{
	"Room",
	"Door",
	"Capacity",
	"Occupants",
	"Empty",
	"Fill Rate (%)",
	"Relaxed",
	"Subjects",
}

// ExportWorkbook 生成排座结果 Excel：Summary 汇总表 + 每个有考生的考场一张座位表
func ExportWorkbook(result *models.PlacementResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("nil placement result")
	}

	f := excelize.NewFile()
	// Note: WriteTo 之前不能 Close

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummary(f, result, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	used := map[string]bool{strings.ToLower(summarySheet): true}
	for _, room := range result.Rooms {
		// 空考场不生成座位表
		if room.OccupantCount == 0 {
			continue
		}
		name := uniqueSheetName(room.RoomName, used)
		if err := writeRoom(f, name, room, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, result *models.PlacementResult, headerStyle int) error {
	if err := writeHeader(f, summarySheet, 1, SummaryHeader, headerStyle); err != nil {
		return err
	}

	widths := []float64{18, 8, 10, 11, 8, 13, 9, 40}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(summarySheet, col, col, w); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	row := 2
	for _, room := range result.Rooms {
		values := []interface{}{
			room.RoomName,
			string(room.Door),
			room.Capacity,
			room.OccupantCount,
			room.EmptyCount,
			round1(room.FillRate),
			room.RelaxedCount,
			formatSubjectCounts(room.SubjectCounts),
		}
		if err := setRow(f, summarySheet, row, values); err != nil {
			return err
		}
		row++
	}

	s := result.Summary
	row++
	totals := [][]interface{}{
		{"Total students", s.TotalStudents},
		{"Total capacity", s.TotalCapacity},
		{"Placed", s.Placed},
		{"Unplaced", s.UnplacedCount},
		{"Relaxed placements", s.RelaxedCount},
		{"Utilization (%)", round1(s.Utilization)},
		{"Seed", fmt.Sprintf("%d", result.Seed)},
	}
	if s.Shortfall > 0 {
		totals = append(totals, []interface{}{"Shortfall", s.Shortfall})
	}
	for _, t := range totals {
		if err := setRow(f, summarySheet, row, t); err != nil {
			return err
		}
		row++
	}

	for _, w := range result.Warnings {
		if err := setRow(f, summarySheet, row, []interface{}{"Warning", w}); err != nil {
			return err
		}
		row++
	}

	if len(result.Unplaced) > 0 {
		row++
		if err := writeHeader(f, summarySheet, row, []string{"Unplaced student", "Subject"}, headerStyle); err != nil {
			return err
		}
		row++
		for _, u := range result.Unplaced {
			if err := setRow(f, summarySheet, row, []interface{}{u.Student, u.Subject}); err != nil {
				return err
			}
			row++
		}
	}

	return freezeHeader(f, summarySheet, 0)
}

// writeRoom 座位表：A 列为排号，区块按 left → middle → right 排列，区块之间空一列作为过道
func writeRoom(f *excelize.File, sheet string, room models.RoomResult, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	header := []string{"Row"}
	type block struct {
		rows  [][]*models.Occupant
		start int // 起始列（1-based）
	}
	var blocks []block
	maxRows := 0
	for _, section := range models.SectionOrder {
		rows := room.Sections[section]
		if len(rows) == 0 || len(rows[0]) == 0 {
			continue
		}
		if len(blocks) > 0 {
			header = append(header, "") // 过道
		}
		blocks = append(blocks, block{rows: rows, start: len(header) + 1})
		for c := range rows[0] {
			header = append(header, fmt.Sprintf("%s %d", section, c+1))
		}
		if len(rows) > maxRows {
			maxRows = len(rows)
		}
	}

	if err := writeHeader(f, sheet, 1, header, headerStyle); err != nil {
		return err
	}
	for i := range header {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := 22.0
		switch {
		case i == 0:
			width = 6
		case header[i] == "":
			width = 3
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for r := 0; r < maxRows; r++ {
		if err := setCellValue(f, sheet, 1, r+2, r+1); err != nil {
			return err
		}
		for _, b := range blocks {
			if r >= len(b.rows) {
				continue
			}
			for c, occ := range b.rows[r] {
				if occ == nil {
					continue
				}
				if err := setCellValue(f, sheet, b.start+c, r+2, formatOccupant(occ)); err != nil {
					return err
				}
			}
		}
	}

	return freezeHeader(f, sheet, 1)
}

func writeHeader(f *excelize.File, sheet string, row int, headers []string, style int) error {
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		if err := setCellValue(f, sheet, i+1, row, v); err != nil {
			return err
		}
	}
	return nil
}

func setCellValue(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s!%s: %w", sheet, cell, err)
	}
	return nil
}

// freezeHeader 冻结首行（xSplit>0 时同时冻结前 xSplit 列）
func freezeHeader(f *excelize.File, sheet string, xSplit int) error {
	topLeft, _ := excelize.CoordinatesToCellName(xSplit+1, 2)
	pane := "bottomLeft"
	if xSplit > 0 {
		pane = "bottomRight"
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      xSplit,
		YSplit:      1,
		TopLeftCell: topLeft,
		ActivePane:  pane,
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}

func formatOccupant(occ *models.Occupant) string {
	return fmt.Sprintf("%s (%s)", occ.Name, occ.Subject)
}

// formatSubjectCounts "Math: 12, Physics: 10"（按科目名排序）
func formatSubjectCounts(counts map[string]int) string {
	subjects := make([]string, 0, len(counts))
	for s := range counts {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	parts := make([]string, 0, len(subjects))
	for _, s := range subjects {
		parts = append(parts, fmt.Sprintf("%s: %d", s, counts[s]))
	}
	return strings.Join(parts, ", ")
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}

// uniqueSheetName Excel 工作表名最长 31 字符且不能包含 : \ / ? * [ ]
func uniqueSheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, name)
	if clean == "" {
		clean = "Room"
	}
	if len([]rune(clean)) > 31 {
		clean = string([]rune(clean)[:31])
	}

	candidate := clean
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		base := []rune(clean)
		if len(base)+len(suffix) > 31 {
			base = base[:31-len(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
