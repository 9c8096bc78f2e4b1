package placement

import "seatplan/internal/models"

// IsValidSeat 判断空座 (section, row, col) 对该科目是否满足相邻约束
// 以下任一位置坐着同科目考生即不合法：
//   - 同区块同一行的左右两侧
//   - 同区块同一列的前后两排
//   - 相邻区块中相同 (row, col) 坐标的座位
//
// 区块不存在、坐标越界或座位已占用时返回 false。纯函数，不修改座位表。
func IsValidSeat(r *Room, section models.Section, row, col int, subject string) bool {
	if !r.inBounds(section, row, col) || r.grid[section][row][col] != nil {
		return false
	}

	neighbours := [4][2]int{
		{row, col - 1},
		{row, col + 1},
		{row - 1, col},
		{row + 1, col},
	}
	for _, n := range neighbours {
		if sameSubject(r.occupant(section, n[0], n[1]), subject) {
			return false
		}
	}

	// 跨过道：相邻区块相同坐标（坐标对齐近似，不是几何距离）
	for _, adj := range AdjacentSections(r, section) {
		if sameSubject(r.occupant(adj, row, col), subject) {
			return false
		}
	}

	return true
}

// AdjacentSections 区块的相邻区块
//   - left:   middle（存在时），否则 right（存在时），否则无
//   - right:  middle（存在时），否则 left（存在时），否则无
//   - middle: left 和 right 中存在的
func AdjacentSections(r *Room, section models.Section) []models.Section {
	switch section {
	case models.SectionLeft:
		return firstPresent(r, models.SectionMiddle, models.SectionRight)
	case models.SectionRight:
		return firstPresent(r, models.SectionMiddle, models.SectionLeft)
	case models.SectionMiddle:
		var out []models.Section
		for _, s := range []models.Section{models.SectionLeft, models.SectionRight} {
			if r.hasSection(s) {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func firstPresent(r *Room, candidates ...models.Section) []models.Section {
	for _, s := range candidates {
		if r.hasSection(s) {
			return []models.Section{s}
		}
	}
	return nil
}

func sameSubject(occ *models.Occupant, subject string) bool {
	return occ != nil && occ.Subject == subject
}
