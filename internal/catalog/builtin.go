package catalog

import "seatplan/internal/models"

func grid(left, middle, right models.GridSize) models.SeatGridSpec {
	g := models.SeatGridSpec{}
	if left.Capacity() > 0 {
		g[models.SectionLeft] = left
	}
	if middle.Capacity() > 0 {
		g[models.SectionMiddle] = middle
	}
	if right.Capacity() > 0 {
		g[models.SectionRight] = right
	}
	return g
}

func size(rows, cols int) models.GridSize {
	return models.GridSize{Rows: rows, Cols: cols}
}

var none = models.GridSize{}

// builtinRooms 学院现有考场的结构（行, 列）
func builtinRooms() []RoomSpec {
	return []RoomSpec{
		{Name: "Amphitheatre", Grid: grid(size(10, 10), none, size(10, 10))},
		{Name: "ISE1-MATH", Grid: grid(size(7, 4), none, size(5, 4))},
		{Name: "AS1", Grid: grid(size(5, 4), none, size(5, 4))},
		{Name: "AS2", Grid: grid(size(5, 2), size(5, 2), size(5, 2))},
		{Name: "AS3", Grid: grid(size(3, 4), none, size(3, 4))},
		{Name: "ISEL1", Grid: grid(size(5, 2), size(5, 2), size(5, 2))},
		{Name: "ISEL2", Grid: grid(size(5, 2), size(5, 2), size(5, 2))},
		{Name: "ISEL3", Grid: grid(size(5, 2), size(5, 2), size(5, 2))},
		{Name: "ISEECO", Grid: grid(size(5, 2), size(5, 2), size(5, 2))},
		{Name: "ISEMATH", Grid: grid(size(7, 4), none, size(5, 4))},
		{Name: "ISE3", Grid: grid(size(6, 4), none, size(6, 4))},
		{Name: "TSS1", Grid: grid(size(6, 2), size(6, 2), size(6, 2))},
	}
}
