package core

import "strings"

// ItemTemplate is one line of the expense taxonomy: a named item and
// the amount a fresh record starts with.
type ItemTemplate struct {
	Name         string `json:"name"`
	DefaultValue Money  `json:"defaultValue"`
}

// StructureCategory is an ordered, named group of item templates.
type StructureCategory struct {
	Name  string         `json:"name"`
	Items []ItemTemplate `json:"items"`
}

// Structure is the configurable expense taxonomy used to seed new
// records, plus the set of categories that accept bill photo uploads.
// Category order and item order are meaningful.
type Structure struct {
	Categories        []StructureCategory `json:"categories"`
	BillUploadEnabled map[string]bool     `json:"billUploadEnabled,omitempty"`
}

// DefaultStructure is the taxonomy a fresh installation starts with.
func DefaultStructure() Structure {
	return Structure{
		Categories: []StructureCategory{
			{Name: "Vegetables", Items: []ItemTemplate{}},
			{Name: "Groceries", Items: []ItemTemplate{}},
			{Name: "Fixed", Items: []ItemTemplate{
				{Name: "Rent"},
				{Name: "Electricity"},
			}},
		},
		BillUploadEnabled: map[string]bool{"Fixed": true},
	}
}

// Clone returns a deep copy of the structure.
func (s Structure) Clone() Structure {
	out := Structure{
		Categories: make([]StructureCategory, len(s.Categories)),
	}
	for i, c := range s.Categories {
		cc := c
		cc.Items = append([]ItemTemplate(nil), c.Items...)
		out.Categories[i] = cc
	}
	if s.BillUploadEnabled != nil {
		out.BillUploadEnabled = make(map[string]bool, len(s.BillUploadEnabled))
		for k, v := range s.BillUploadEnabled {
			out.BillUploadEnabled[k] = v
		}
	}
	return out
}

// Validate checks a structure supplied wholesale, e.g. an edited working
// copy submitted for commit: names non-empty, category names unique,
// item names unique within their category, default values non-negative.
func (s Structure) Validate() error {
	seen := make(map[string]bool, len(s.Categories))
	for _, c := range s.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return ErrEmptyName
		}
		if seen[name] {
			return ErrDuplicateName
		}
		seen[name] = true

		items := make(map[string]bool, len(c.Items))
		for _, it := range c.Items {
			itemName := strings.ToLower(strings.TrimSpace(it.Name))
			if itemName == "" {
				return ErrEmptyName
			}
			if items[itemName] {
				return ErrDuplicateName
			}
			items[itemName] = true
			if err := it.DefaultValue.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// UploadEnabled reports whether the named category accepts bill photos.
func (s Structure) UploadEnabled(category string) bool {
	return s.BillUploadEnabled[category]
}

func (s Structure) categoryIndex(name string) int {
	name = strings.TrimSpace(name)
	for i, c := range s.Categories {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// moveElement moves one element of list from index from to index to,
// preserving the relative order of every other element: classic remove
// then insert. Both arrow-button steps and drag-and-drop call this, so
// the two gestures always produce identical final orders.
func moveElement[T any](list []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return list, ErrIndexOutOfRange
	}
	if from == to {
		return list, nil
	}
	out := make([]T, 0, len(list))
	out = append(out, list[:from]...)
	out = append(out, list[from+1:]...)
	out = append(out[:to], append([]T{list[from]}, out[to:]...)...)
	return out, nil
}

// StructureEditor edits a working copy of the taxonomy. Nothing the
// editor does is visible to other consumers until Commit; the caller
// decides whether to persist the committed copy or throw it away.
type StructureEditor struct {
	working Structure
}

// NewStructureEditor starts an editing session over a deep copy of s.
func NewStructureEditor(s Structure) *StructureEditor {
	w := s.Clone()
	if w.BillUploadEnabled == nil {
		w.BillUploadEnabled = make(map[string]bool)
	}
	return &StructureEditor{working: w}
}

// AddCategory appends an empty category at the end of the order. The
// trimmed name must not already exist.
func (e *StructureEditor) AddCategory(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if e.working.categoryIndex(name) >= 0 {
		return ErrDuplicateName
	}
	e.working.Categories = append(e.working.Categories, StructureCategory{
		Name:  name,
		Items: []ItemTemplate{},
	})
	return nil
}

// DeleteCategory removes the category, all its items, and its
// bill-upload flag. Irreversible; the UI confirms before calling.
func (e *StructureEditor) DeleteCategory(name string) {
	idx := e.working.categoryIndex(name)
	if idx < 0 {
		return
	}
	e.working.Categories = append(e.working.Categories[:idx], e.working.Categories[idx+1:]...)
	delete(e.working.BillUploadEnabled, strings.TrimSpace(name))
}

// AddItem appends an item template to the end of the category's order.
// Item names are compared case-insensitively within their category.
func (e *StructureEditor) AddItem(category, name string, defaultValue Money) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if err := defaultValue.Validate(); err != nil {
		return err
	}
	idx := e.working.categoryIndex(category)
	if idx < 0 {
		return ErrCategoryNotFound
	}
	for _, it := range e.working.Categories[idx].Items {
		if strings.EqualFold(it.Name, name) {
			return ErrDuplicateName
		}
	}
	e.working.Categories[idx].Items = append(e.working.Categories[idx].Items, ItemTemplate{
		Name:         name,
		DefaultValue: defaultValue,
	})
	return nil
}

// DeleteItem removes the named item from the category.
func (e *StructureEditor) DeleteItem(category, name string) {
	idx := e.working.categoryIndex(category)
	if idx < 0 {
		return
	}
	items := e.working.Categories[idx].Items
	for i, it := range items {
		if strings.EqualFold(it.Name, strings.TrimSpace(name)) {
			e.working.Categories[idx].Items = append(items[:i], items[i+1:]...)
			return
		}
	}
}

// ReorderCategories moves one category to a new position.
func (e *StructureEditor) ReorderCategories(from, to int) error {
	moved, err := moveElement(e.working.Categories, from, to)
	if err != nil {
		return err
	}
	e.working.Categories = moved
	return nil
}

// ReorderItems moves one item of the category to a new position.
func (e *StructureEditor) ReorderItems(category string, from, to int) error {
	idx := e.working.categoryIndex(category)
	if idx < 0 {
		return ErrCategoryNotFound
	}
	moved, err := moveElement(e.working.Categories[idx].Items, from, to)
	if err != nil {
		return err
	}
	e.working.Categories[idx].Items = moved
	return nil
}

// SetBillUpload toggles the category's membership in the upload-enabled
// set.
func (e *StructureEditor) SetBillUpload(category string, enabled bool) {
	category = strings.TrimSpace(category)
	if enabled {
		e.working.BillUploadEnabled[category] = true
		return
	}
	delete(e.working.BillUploadEnabled, category)
}

// Commit returns the finalized structure for persistence, detached from
// the editor's working copy.
func (e *StructureEditor) Commit() Structure {
	return e.working.Clone()
}
