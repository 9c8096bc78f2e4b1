package placement

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"seatplan/internal/models"

	"go.uber.org/zap"
)

// ErrInvalidInput 输入违反调用约定（空科目、空姓名、重名、nil 考场）
var ErrInvalidInput = errors.New("invalid placement input")

// Outcome 一次排座运行的结果：被修改后的考场 + 未入座名单
type Outcome struct {
	Rooms    []*Room
	Unplaced []models.Unplaced
}

// TotalPlaced 所有考场已入座人数
func (o *Outcome) TotalPlaced() int {
	total := 0
	for _, r := range o.Rooms {
		total += r.OccupantCount()
	}
	return total
}

// Engine 排座引擎
// 随机源可注入，相同 seed + 相同输入可完全复现；Engine 非并发安全，每次运行单独创建
type Engine struct {
	rng    *rand.Rand
	logger *zap.Logger
}

// NewEngine 创建排座引擎
func NewEngine(rng *rand.Rand, logger *zap.Logger) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{rng: rng, logger: logger}
}

// NewSeededEngine 使用固定 seed 创建排座引擎
func NewSeededEngine(seed int64, logger *zap.Logger) *Engine {
	return NewEngine(rand.New(rand.NewSource(seed)), logger)
}

// Run 执行排座
// rooms 须已按容量降序排列（见 SortRoomsByCapacity），考生按顺序尝试每个考场，第一个成功即止。
// 容量不足不是错误：放不下的考生进入 Unplaced。仅在输入违反约定时返回错误，且此时不修改任何考场。
func (e *Engine) Run(classes []models.ClassGroup, rooms []*Room) (*Outcome, error) {
	if err := validateInput(classes, rooms); err != nil {
		return nil, err
	}

	ordered := make([]models.ClassGroup, len(classes))
	copy(ordered, classes)
	// 人数多的班级优先，人数相同保持输入顺序
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Students) > len(ordered[j].Students)
	})

	outcome := &Outcome{Rooms: rooms, Unplaced: []models.Unplaced{}}

	for _, class := range ordered {
		students := make([]string, len(class.Students))
		copy(students, class.Students)
		e.rng.Shuffle(len(students), func(i, j int) {
			students[i], students[j] = students[j], students[i]
		})

		unplaced := 0
		for _, student := range students {
			if !offer(rooms, student, class.Subject) {
				outcome.Unplaced = append(outcome.Unplaced, models.Unplaced{Student: student, Subject: class.Subject})
				unplaced++
			}
		}

		if unplaced > 0 {
			e.logger.Warn("Students of class could not be placed",
				zap.String("class", class.ClassName),
				zap.String("subject", class.Subject),
				zap.Int("unplaced", unplaced),
				zap.Int("class_size", len(students)),
			)
		} else {
			e.logger.Debug("Class fully placed",
				zap.String("class", class.ClassName),
				zap.String("subject", class.Subject),
				zap.Int("class_size", len(students)),
			)
		}
	}

	return outcome, nil
}

// offer 按顺序把考生交给各考场，第一个接受的考场胜出
func offer(rooms []*Room, student, subject string) bool {
	for _, room := range rooms {
		if room.PlaceStudent(student, subject) {
			return true
		}
	}
	return false
}

// SortRoomsByCapacity 按容量降序稳定排序（容量相同保持原顺序）
func SortRoomsByCapacity(rooms []*Room) {
	sort.SliceStable(rooms, func(i, j int) bool {
		return rooms[i].Capacity() > rooms[j].Capacity()
	})
}

func validateInput(classes []models.ClassGroup, rooms []*Room) error {
	for i, room := range rooms {
		if room == nil {
			return fmt.Errorf("%w: room #%d is nil", ErrInvalidInput, i)
		}
	}

	seen := make(map[string]string)
	for _, class := range classes {
		if class.Subject == "" {
			return fmt.Errorf("%w: class %q has no subject", ErrInvalidInput, class.ClassName)
		}
		for _, student := range class.Students {
			if student == "" {
				return fmt.Errorf("%w: class %q contains an empty student name", ErrInvalidInput, class.ClassName)
			}
			if other, dup := seen[student]; dup {
				return fmt.Errorf("%w: student %q listed in class %q and class %q", ErrInvalidInput, student, other, class.ClassName)
			}
			seen[student] = class.ClassName
		}
	}
	return nil
}
