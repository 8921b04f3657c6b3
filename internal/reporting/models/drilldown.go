package models

// DrillLevel is the active depth of the category hierarchy.
type DrillLevel int

const (
	LevelCategory DrillLevel = iota + 1
	LevelSubcategory
	LevelSubSubcategory
)

func (l DrillLevel) String() string {
	switch l {
	case LevelCategory:
		return "CATEGORY"
	case LevelSubcategory:
		return "SUBCATEGORY"
	case LevelSubSubcategory:
		return "SUBSUBCATEGORY"
	}
	return "UNKNOWN"
}

// DrillDownState tracks where a session is inside the
// category -> subcategory -> sub-subcategory hierarchy.
// Category is set only at LevelSubcategory and deeper, Subcategory only at
// LevelSubSubcategory.
type DrillDownState struct {
	Level       DrillLevel `json:"level"`
	Category    string     `json:"category,omitempty"`
	Subcategory string     `json:"subcategory,omitempty"`
}

// NewDrillDownState returns the session's starting position.
func NewDrillDownState() *DrillDownState {
	return &DrillDownState{Level: LevelCategory}
}

// Enter advances one level with the selected key. Returns false when the
// state is already at the deepest level.
func (s *DrillDownState) Enter(key string) bool {
	switch s.Level {
	case LevelCategory:
		s.Category = key
		s.Subcategory = ""
		s.Level = LevelSubcategory
		return true
	case LevelSubcategory:
		s.Subcategory = key
		s.Level = LevelSubSubcategory
		return true
	}
	return false
}

// Back moves one level up, discarding the deepest key. No-op at the top.
func (s *DrillDownState) Back() {
	switch s.Level {
	case LevelSubSubcategory:
		s.Subcategory = ""
		s.Level = LevelSubcategory
	case LevelSubcategory:
		s.Category = ""
		s.Level = LevelCategory
	}
}

// Home resets the session to the category level with both keys cleared.
func (s *DrillDownState) Home() {
	s.Level = LevelCategory
	s.Category = ""
	s.Subcategory = ""
}

// Breadcrumb renders the active path for display.
func (s *DrillDownState) Breadcrumb() string {
	b := "Categories"
	if s.Level >= LevelSubcategory {
		b += " > " + s.Category
	}
	if s.Level == LevelSubSubcategory {
		b += " > " + s.Subcategory
	}
	return b
}
