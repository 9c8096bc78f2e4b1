package service

import (
	"fmt"

	"seatplan/internal/models"
	"seatplan/internal/placement"
)

// Summarize 计算容量统计（rooms 按尝试顺序，即容量降序）
func Summarize(classes []models.ClassGroup, outcome *placement.Outcome) models.CapacitySummary {
	s := models.CapacitySummary{}
	for _, c := range classes {
		s.TotalStudents += len(c.Students)
	}
	for _, r := range outcome.Rooms {
		s.TotalCapacity += r.Capacity()
		s.Placed += r.OccupantCount()
		s.RelaxedCount += r.RelaxedCount()
	}
	s.UnplacedCount = len(outcome.Unplaced)
	if s.TotalCapacity > 0 {
		s.Utilization = float64(s.Placed) / float64(s.TotalCapacity) * 100
	}
	s.Shortfall = max(0, s.TotalStudents-s.TotalCapacity)
	s.FirstRoomSuffices = len(outcome.Rooms) > 1 &&
		s.TotalStudents > 0 &&
		outcome.Rooms[0].Capacity() >= s.TotalStudents
	return s
}

// summaryWarnings 面向使用者的提示（容量不足、考场选多了、放宽了相邻约束）
func summaryWarnings(s models.CapacitySummary, outcome *placement.Outcome) []string {
	var warnings []string
	if s.Shortfall > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"insufficient capacity: %d students for %d seats, %d students without a seat",
			s.TotalStudents, s.TotalCapacity, s.Shortfall))
	}
	if s.FirstRoomSuffices {
		warnings = append(warnings, fmt.Sprintf(
			"room %s alone (capacity %d) can seat all %d students",
			outcome.Rooms[0].Name(), outcome.Rooms[0].Capacity(), s.TotalStudents))
	}
	if s.RelaxedCount > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"%d students were seated next to a student of the same subject", s.RelaxedCount))
	}
	return warnings
}

// buildResult 将运行结果转成可持久化的 DTO
func buildResult(outcome *placement.Outcome) ([]models.RoomResult, []models.Unplaced) {
	rooms := make([]models.RoomResult, 0, len(outcome.Rooms))
	for _, r := range outcome.Rooms {
		rooms = append(rooms, r.Snapshot())
	}
	unplaced := make([]models.Unplaced, len(outcome.Unplaced))
	copy(unplaced, outcome.Unplaced)
	return rooms, unplaced
}
