package catalog

import (
	"errors"
	"fmt"
	"sort"

	"seatplan/internal/models"
)

// ErrRoomNotFound 考场名称不在目录中
var ErrRoomNotFound = errors.New("room not found in catalog")

// RoomSpec 考场结构定义
type RoomSpec struct {
	Name string              `json:"name"`
	Door models.DoorSide     `json:"door"`
	Grid models.SeatGridSpec `json:"grid"`
}

// Capacity 考场总容量
func (s RoomSpec) Capacity() int {
	return s.Grid.Capacity()
}

// clone 目录内外不共享 Grid map
func (s RoomSpec) clone() RoomSpec {
	s.Grid = copyGrid(s.Grid)
	return s
}

func copyGrid(g models.SeatGridSpec) models.SeatGridSpec {
	out := make(models.SeatGridSpec, len(g))
	for section, size := range g {
		out[section] = size
	}
	return out
}

// Catalog 考场名称 → 结构（构造后只读）
type Catalog struct {
	rooms map[string]RoomSpec
}

// New 基于给定的考场列表创建目录；同名后者覆盖前者
func New(specs ...RoomSpec) (*Catalog, error) {
	c := &Catalog{rooms: make(map[string]RoomSpec, len(specs))}
	for _, spec := range specs {
		if err := validate(spec); err != nil {
			return nil, err
		}
		c.rooms[spec.Name] = normalize(spec)
	}
	return c, nil
}

// Default 内置考场目录
func Default() *Catalog {
	c, err := New(builtinRooms()...)
	if err != nil {
		// 内置数据有误属于编码错误
		panic(err)
	}
	return c
}

// Lookup 按名称查找考场结构；未知名称返回 ErrRoomNotFound，绝不替换为默认结构
func (c *Catalog) Lookup(name string) (RoomSpec, error) {
	spec, ok := c.rooms[name]
	if !ok {
		return RoomSpec{}, fmt.Errorf("%w: %q", ErrRoomNotFound, name)
	}
	return spec.clone(), nil
}

// Names 所有考场名称（按字母序）
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.rooms))
	for name := range c.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All 所有考场结构（按名称排序）
func (c *Catalog) All() []RoomSpec {
	names := c.Names()
	specs := make([]RoomSpec, 0, len(names))
	for _, name := range names {
		specs = append(specs, c.rooms[name].clone())
	}
	return specs
}

// Resolve 按输入顺序解析考场；未知名称收集到 unknown 中返回
func (c *Catalog) Resolve(names []string) (specs []RoomSpec, unknown []string) {
	for _, name := range names {
		spec, ok := c.rooms[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		specs = append(specs, spec.clone())
	}
	return specs, unknown
}

// Merge 返回合并后的新目录，extra 中的同名考场覆盖当前定义
func (c *Catalog) Merge(extra []RoomSpec) (*Catalog, error) {
	merged := &Catalog{rooms: make(map[string]RoomSpec, len(c.rooms)+len(extra))}
	for name, spec := range c.rooms {
		merged.rooms[name] = spec
	}
	for _, spec := range extra {
		if err := validate(spec); err != nil {
			return nil, err
		}
		merged.rooms[spec.Name] = normalize(spec)
	}
	return merged, nil
}

// Len 考场数量
func (c *Catalog) Len() int {
	return len(c.rooms)
}

func validate(spec RoomSpec) error {
	if spec.Name == "" {
		return errors.New("room spec without name")
	}
	if len(spec.Grid) == 0 {
		return fmt.Errorf("room %q has no sections", spec.Name)
	}
	for section, size := range spec.Grid {
		if !section.Valid() {
			return fmt.Errorf("room %q: unknown section %q", spec.Name, section)
		}
		if size.Rows < 0 || size.Cols < 0 {
			return fmt.Errorf("room %q: negative dimensions in section %q", spec.Name, section)
		}
	}
	switch spec.Door {
	case "", models.DoorLeft, models.DoorRight:
	default:
		return fmt.Errorf("room %q: unknown door side %q", spec.Name, spec.Door)
	}
	return nil
}

// normalize 复制 Grid，补全默认门位置
func normalize(spec RoomSpec) RoomSpec {
	spec = spec.clone()
	if spec.Door == "" {
		spec.Door = models.DoorLeft
	}
	return spec
}
