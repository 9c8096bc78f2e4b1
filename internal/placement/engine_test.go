package placement

import (
	"fmt"
	"math/rand"
	"testing"

	"seatplan/internal/catalog"
	"seatplan/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func studentName(i int) string {
	return fmt.Sprintf("student-%03d", i)
}

func class(name, subject string, from, n int) models.ClassGroup {
	students := make([]string, n)
	for i := range students {
		students[i] = studentName(from + i)
	}
	return models.ClassGroup{ClassName: name, Subject: subject, Students: students}
}

func totalStudents(classes []models.ClassGroup) int {
	n := 0
	for _, c := range classes {
		n += len(c.Students)
	}
	return n
}

// assertInvariants 对一次运行检查全部不变量
func assertInvariants(t *testing.T, classes []models.ClassGroup, out *Outcome) {
	t.Helper()

	seated := map[string]bool{}
	for _, r := range out.Rooms {
		require.LessOrEqual(t, r.OccupantCount(), r.Capacity(), r.Name())

		relaxed := 0
		replay := NewRoom(catalog.RoomSpec{Name: r.Name(), Grid: gridOf(r)})
		for _, p := range r.Placements() {
			require.False(t, seated[p.Occupant.Name], "student %s seated twice", p.Occupant.Name)
			seated[p.Occupant.Name] = true

			if p.Relaxed {
				relaxed++
			} else {
				// 紧凑阶段入座的座位在当时必须合法
				require.True(t, IsValidSeat(replay, p.Section, p.Row, p.Col, p.Occupant.Subject),
					"compact seat %s[%d][%d] violates adjacency", p.Section, p.Row, p.Col)
			}
			replay.put(p.Section, p.Row, p.Col, p.Occupant.Name, p.Occupant.Subject, p.Relaxed)
		}
		require.Equal(t, relaxed, r.RelaxedCount(), r.Name())
	}

	for _, u := range out.Unplaced {
		require.False(t, seated[u.Student], "unplaced student %s also seated", u.Student)
	}
	require.Equal(t, totalStudents(classes), out.TotalPlaced()+len(out.Unplaced))
}

func gridOf(r *Room) models.SeatGridSpec {
	g := models.SeatGridSpec{}
	for s, rows := range r.grid {
		cols := 0
		if len(rows) > 0 {
			cols = len(rows[0])
		}
		g[s] = models.GridSize{Rows: len(rows), Cols: cols}
	}
	return g
}

func TestRun_TwoSubjectsFillRoomWithoutRelaxing(t *testing.T) {
	classes := []models.ClassGroup{
		class("ISE1", "Math", 0, 12),
		class("AS1", "Economics", 12, 12),
	}
	room := NewRoom(leftRight(3, 4))

	out, err := NewSeededEngine(7, zap.NewNop()).Run(classes, []*Room{room})
	require.NoError(t, err)

	assert.Equal(t, 24, room.OccupantCount())
	assert.Equal(t, 0, room.RelaxedCount())
	assert.Empty(t, out.Unplaced)
	assertInvariants(t, classes, out)
}

func TestRun_TwentyFifthStudentIsUnplaced(t *testing.T) {
	classes := []models.ClassGroup{
		class("ISE1", "Math", 0, 13),
		class("AS1", "Economics", 13, 12),
	}
	room := NewRoom(leftRight(3, 4))

	out, err := NewSeededEngine(1, nil).Run(classes, []*Room{room})
	require.NoError(t, err)

	assert.Equal(t, 24, room.OccupantCount())
	require.Len(t, out.Unplaced, 1)
	// 大班先排，最后一个学生来自 AS1
	assert.Equal(t, "Economics", out.Unplaced[0].Subject)
	assertInvariants(t, classes, out)
}

func TestRun_SingleSeatSingleStudent(t *testing.T) {
	classes := []models.ClassGroup{{ClassName: "TSS1", Subject: "Stats", Students: []string{"Awa"}}}
	room := NewRoom(spec("Tiny", models.SeatGridSpec{models.SectionLeft: {Rows: 1, Cols: 1}}))

	out, err := NewSeededEngine(3, nil).Run(classes, []*Room{room})
	require.NoError(t, err)

	assert.Equal(t, 1, room.OccupantCount())
	assert.Empty(t, out.Unplaced)
}

func TestRun_NoStudents(t *testing.T) {
	rooms := []*Room{NewRoom(leftRight(3, 4)), NewRoom(leftRight(1, 1))}

	out, err := NewSeededEngine(3, nil).Run(nil, rooms)
	require.NoError(t, err)

	for _, r := range out.Rooms {
		assert.Equal(t, 0, r.OccupantCount())
	}
	assert.NotNil(t, out.Unplaced)
	assert.Empty(t, out.Unplaced)

	out, err = NewSeededEngine(3, nil).Run([]models.ClassGroup{{ClassName: "Empty", Subject: "Math"}}, rooms)
	require.NoError(t, err)
	assert.Empty(t, out.Unplaced)
}

func TestRun_OverCapacityByK(t *testing.T) {
	rooms := []*Room{
		NewRoom(leftRight(2, 2)),
		NewRoom(spec("Small", models.SeatGridSpec{models.SectionMiddle: {Rows: 1, Cols: 3}})),
	}
	classes := []models.ClassGroup{
		class("A", "Math", 0, 7),
		class("B", "Physics", 7, 5),
		class("C", "History", 12, 3),
	}
	// 15 人，11 个座位
	out, err := NewSeededEngine(42, nil).Run(classes, rooms)
	require.NoError(t, err)

	assert.Len(t, out.Unplaced, 4)
	assert.Equal(t, 11, out.TotalPlaced())
	assertInvariants(t, classes, out)
}

func TestRun_NoRooms(t *testing.T) {
	classes := []models.ClassGroup{class("A", "Math", 0, 3)}

	out, err := NewSeededEngine(1, nil).Run(classes, nil)
	require.NoError(t, err)
	assert.Len(t, out.Unplaced, 3)
}

func TestRun_FirstRoomWins(t *testing.T) {
	big := NewRoom(leftRight(2, 2))
	small := NewRoom(spec("Small", models.SeatGridSpec{models.SectionLeft: {Rows: 1, Cols: 1}}))

	// 同科目 9 人：big 先放满（含强制阶段），第 9 人溢出到 small
	classes := []models.ClassGroup{class("A", "Math", 0, 9)}
	out, err := NewSeededEngine(9, nil).Run(classes, []*Room{big, small})
	require.NoError(t, err)

	assert.Equal(t, 8, big.OccupantCount())
	assert.Equal(t, 4, big.RelaxedCount())
	assert.Equal(t, 1, small.OccupantCount())
	assert.Equal(t, 0, small.RelaxedCount())
	assertInvariants(t, classes, out)
}

func TestRun_LargestClassFirstStableTies(t *testing.T) {
	// 一个座位：谁先排谁坐下
	room := NewRoom(spec("One", models.SeatGridSpec{models.SectionLeft: {Rows: 1, Cols: 1}}))
	classes := []models.ClassGroup{
		{ClassName: "first", Subject: "Math", Students: []string{"m1"}},
		{ClassName: "second", Subject: "Physics", Students: []string{"p1"}},
	}

	out, err := NewSeededEngine(5, nil).Run(classes, []*Room{room})
	require.NoError(t, err)

	occ, err := room.Seat(models.SectionLeft, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "m1", occ.Name, "ties keep input order")
	assert.Equal(t, []models.Unplaced{{Student: "p1", Subject: "Physics"}}, out.Unplaced)

	room2 := NewRoom(spec("One", models.SeatGridSpec{models.SectionLeft: {Rows: 1, Cols: 1}}))
	classes2 := []models.ClassGroup{
		{ClassName: "small", Subject: "Math", Students: []string{"m1"}},
		{ClassName: "large", Subject: "Physics", Students: []string{"p1", "p2"}},
	}
	_, err = NewSeededEngine(5, nil).Run(classes2, []*Room{room2})
	require.NoError(t, err)
	occ, err = room2.Seat(models.SectionLeft, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Physics", occ.Subject, "larger class placed first")
}

func TestRun_SameSeedSameSeating(t *testing.T) {
	classes := []models.ClassGroup{
		class("A", "Math", 0, 10),
		class("B", "Physics", 10, 9),
		class("C", "History", 19, 4),
	}
	run := func() []models.RoomResult {
		rooms := []*Room{NewRoom(leftRight(3, 4)), NewRoom(spec("S", models.SeatGridSpec{models.SectionLeft: {Rows: 2, Cols: 2}}))}
		out, err := NewSeededEngine(2024, nil).Run(classes, rooms)
		require.NoError(t, err)
		res := make([]models.RoomResult, 0, len(out.Rooms))
		for _, r := range out.Rooms {
			res = append(res, r.Snapshot())
		}
		return res
	}

	assert.Equal(t, run(), run())
}

func TestRun_DoesNotMutateInput(t *testing.T) {
	classes := []models.ClassGroup{
		class("A", "Math", 0, 2),
		class("B", "Physics", 2, 5),
	}
	original := []string{studentName(2), studentName(3), studentName(4), studentName(5), studentName(6)}

	_, err := NewSeededEngine(11, nil).Run(classes, []*Room{NewRoom(leftRight(2, 2))})
	require.NoError(t, err)

	assert.Equal(t, "A", classes[0].ClassName)
	assert.Equal(t, original, classes[1].Students)
}

func TestRun_ContractViolations(t *testing.T) {
	room := NewRoom(leftRight(2, 2))
	engine := NewSeededEngine(1, nil)

	cases := map[string]struct {
		classes []models.ClassGroup
		rooms   []*Room
	}{
		"empty subject": {
			classes: []models.ClassGroup{{ClassName: "A", Students: []string{"x"}}},
			rooms:   []*Room{room},
		},
		"empty name": {
			classes: []models.ClassGroup{{ClassName: "A", Subject: "Math", Students: []string{"x", ""}}},
			rooms:   []*Room{room},
		},
		"duplicate across classes": {
			classes: []models.ClassGroup{
				{ClassName: "A", Subject: "Math", Students: []string{"x"}},
				{ClassName: "B", Subject: "Physics", Students: []string{"x"}},
			},
			rooms: []*Room{room},
		},
		"nil room": {
			classes: []models.ClassGroup{{ClassName: "A", Subject: "Math", Students: []string{"x"}}},
			rooms:   []*Room{room, nil},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := engine.Run(tc.classes, tc.rooms)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, 0, room.OccupantCount(), "no mutation on contract violation")
		})
	}
}

func TestRun_RandomisedInvariants(t *testing.T) {
	gen := rand.New(rand.NewSource(99))
	subjects := []string{"Math", "Physics", "History", "Economics"}

	for iter := 0; iter < 50; iter++ {
		var rooms []*Room
		for r := 0; r < 1+gen.Intn(3); r++ {
			grid := models.SeatGridSpec{}
			for _, s := range models.SectionOrder {
				if gen.Intn(3) > 0 {
					grid[s] = models.GridSize{Rows: gen.Intn(4), Cols: gen.Intn(4)}
				}
			}
			rooms = append(rooms, NewRoom(spec(fmt.Sprintf("R%d", r), grid)))
		}
		SortRoomsByCapacity(rooms)

		var classes []models.ClassGroup
		next := 0
		for c := 0; c < 1+gen.Intn(4); c++ {
			n := gen.Intn(12)
			classes = append(classes, class(fmt.Sprintf("C%d", c), subjects[gen.Intn(len(subjects))], next, n))
			next += n
		}

		out, err := NewSeededEngine(int64(iter), nil).Run(classes, rooms)
		require.NoError(t, err)
		assertInvariants(t, classes, out)

		capacity := 0
		for _, r := range rooms {
			capacity += r.Capacity()
		}
		// 容量足够时所有人都有座位；否则未入座人数恰好等于差额
		assert.Equal(t, max(0, next-capacity), len(out.Unplaced))
	}
}

func TestSortRoomsByCapacity_Stable(t *testing.T) {
	a := NewRoom(spec("a", models.SeatGridSpec{models.SectionLeft: {Rows: 2, Cols: 2}}))
	b := NewRoom(spec("b", models.SeatGridSpec{models.SectionLeft: {Rows: 3, Cols: 3}}))
	c := NewRoom(spec("c", models.SeatGridSpec{models.SectionRight: {Rows: 1, Cols: 4}}))
	d := NewRoom(spec("d", models.SeatGridSpec{models.SectionLeft: {Rows: 1, Cols: 1}}))

	rooms := []*Room{a, b, c, d}
	SortRoomsByCapacity(rooms)

	names := []string{}
	for _, r := range rooms {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, names)
}
