package roster

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"seatplan/internal/models"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrMissingColumns 工作表缺少表头
	ErrMissingColumns = errors.New("sheet has no header row")
	// ErrUnknownClass 分配表中的班级在学生名单中没有对应的工作表
	ErrUnknownClass = errors.New("class has no roster sheet")
	// ErrUndefinedSubject 分配的科目未在该班级的科目表中定义
	ErrUndefinedSubject = errors.New("subject not defined for class")
)

// ClassRoster 一个班级的学生名单（学生文件中的一个工作表）
type ClassRoster struct {
	ClassName string   `json:"class_name"`
	Students  []string `json:"students"`
}

// ReadStudents 读取学生名单：每个工作表一个班级，第一行为表头。
// 默认取第一列为姓名；同时存在 nom 和 prenom/prénom 列时姓名为 "NOM Prenom"。空行跳过。
func ReadStudents(r io.Reader) ([]ClassRoster, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse students workbook: %w", err)
	}
	defer f.Close()

	var rosters []ClassRoster
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}

		roster := ClassRoster{ClassName: strings.TrimSpace(sheet), Students: []string{}}
		if len(rows) == 0 {
			rosters = append(rosters, roster)
			continue
		}
		if isBlank(rows[0]) {
			if len(rows) > 1 {
				return nil, fmt.Errorf("%w: students sheet %s", ErrMissingColumns, sheet)
			}
			rosters = append(rosters, roster)
			continue
		}

		nomCol, prenomCol := nameColumns(rows[0])
		for _, row := range rows[1:] {
			var name string
			if nomCol >= 0 && prenomCol >= 0 {
				nom := strings.ToUpper(cell(row, nomCol))
				prenom := cell(row, prenomCol)
				name = strings.TrimSpace(nom + " " + prenom)
			} else {
				name = cell(row, 0)
			}
			if name == "" {
				continue
			}
			roster.Students = append(roster.Students, name)
		}
		rosters = append(rosters, roster)
	}

	return rosters, nil
}

// ReadSubjects 读取科目表：每个工作表一个班级，表头之后第一列列出该班可选科目
func ReadSubjects(r io.Reader) (map[string][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse subjects workbook: %w", err)
	}
	defer f.Close()

	subjects := make(map[string][]string)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		list := []string{}
		if len(rows) > 1 {
			for _, row := range rows[1:] {
				if s := cell(row, 0); s != "" {
					list = append(list, s)
				}
			}
		}
		subjects[strings.TrimSpace(sheet)] = list
	}
	return subjects, nil
}

// ReadRoomNames 读取考场列表：第一个工作表中表头含 "nom" 或 "salle" 的列（否则第一列）
func ReadRoomNames(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rooms workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: rooms workbook has no sheets", ErrMissingColumns)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 || isBlank(rows[0]) {
		return nil, fmt.Errorf("%w: rooms sheet %s", ErrMissingColumns, sheet)
	}

	col := 0
	for i, h := range rows[0] {
		h = strings.ToLower(strings.TrimSpace(h))
		if strings.Contains(h, "nom") || strings.Contains(h, "salle") {
			col = i
			break
		}
	}

	names := []string{}
	for _, row := range rows[1:] {
		if name := cell(row, col); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// BuildClassGroups 按名单顺序取出分配表中的班级，生成排座输入。
// subjects 为 nil 时不校验科目是否已定义。
func BuildClassGroups(rosters []ClassRoster, subjects map[string][]string, assignments map[string]string) ([]models.ClassGroup, error) {
	known := make(map[string]bool, len(rosters))
	for _, r := range rosters {
		known[r.ClassName] = true
	}
	for class := range assignments {
		if !known[class] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownClass, class)
		}
	}

	groups := make([]models.ClassGroup, 0, len(assignments))
	for _, r := range rosters {
		subject, ok := assignments[r.ClassName]
		if !ok {
			continue
		}
		subject = strings.TrimSpace(subject)
		if subject == "" {
			return nil, fmt.Errorf("%w: class %s has an empty subject", ErrUndefinedSubject, r.ClassName)
		}
		if subjects != nil && !contains(subjects[r.ClassName], subject) {
			return nil, fmt.Errorf("%w: %s is not offered to class %s", ErrUndefinedSubject, subject, r.ClassName)
		}

		students := make([]string, len(r.Students))
		copy(students, r.Students)
		groups = append(groups, models.ClassGroup{
			ClassName: r.ClassName,
			Subject:   subject,
			Students:  students,
		})
	}
	return groups, nil
}

// nameColumns 查找 nom / prenom 列；不存在时返回 -1
func nameColumns(header []string) (nomCol, prenomCol int) {
	nomCol, prenomCol = -1, -1
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(h, "prenom") || strings.Contains(h, "prénom"):
			if prenomCol < 0 {
				prenomCol = i
			}
		case strings.Contains(h, "nom"):
			if nomCol < 0 {
				nomCol = i
			}
		}
	}
	return nomCol, prenomCol
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
