package core

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Status is the completion state of a daily record. The three states
// are flat: any state can be selected from any other, there is no
// automatic transition.
type Status string

const (
	// StatusInProgress is the default for a freshly created record.
	StatusInProgress Status = "IN_PROGRESS"
	// StatusCompleted means the day's entry is done; total sales must be
	// provided before a completed record can be saved.
	StatusCompleted Status = "COMPLETED"
	// StatusClosed marks a non-trading day. Sales inputs are ignored and
	// a closed record always counts as completed.
	StatusClosed Status = "CLOSED"
)

// IsValid returns true if the status is one of the three known states.
func (s Status) IsValid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusClosed:
		return true
	default:
		return false
	}
}

// ExpenseItem is a single named expense line. BillPhotos holds opaque
// photo references; capture and storage of the images themselves happen
// elsewhere.
type ExpenseItem struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Amount     Money    `json:"amount"`
	BillPhotos []string `json:"billPhotos,omitempty"`
}

// ExpenseCategory is an ordered group of expense items. Order is
// meaningful and preserved across edits.
type ExpenseCategory struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Items []ExpenseItem `json:"items"`
}

// DailyRecord is one calendar day's sales and expense entry. The
// expense tree is a deep copy of the taxonomy taken at creation time;
// later taxonomy edits never alter an existing record.
//
// TotalSales is a pointer because "not yet entered" and "zero sales"
// are different things: a completed record requires the former to be
// resolved.
type DailyRecord struct {
	ID           string            `json:"id"`
	Date         Date              `json:"date"`
	MorningSales Money             `json:"morningSales"`
	TotalSales   *Money            `json:"totalSales,omitempty"`
	Expenses     []ExpenseCategory `json:"expenses"`
	IsClosed     bool              `json:"isClosed"`
	IsCompleted  bool              `json:"isCompleted"`
}

func newID() string {
	return uuid.NewString()
}

// StatusFromFlags decodes the persisted two-flag encoding. A nil
// isCompleted means the record predates the three-state model: such
// records default to COMPLETED, only an explicit false means
// IN_PROGRESS.
func StatusFromFlags(isClosed bool, isCompleted *bool) Status {
	if isClosed {
		return StatusClosed
	}
	if isCompleted == nil || *isCompleted {
		return StatusCompleted
	}
	return StatusInProgress
}

// Status derives the three-state status from the persisted flags.
func (r *DailyRecord) Status() Status {
	completed := r.IsCompleted
	return StatusFromFlags(r.IsClosed, &completed)
}

// SetStatus updates the persisted flags. Closing a record forces the
// completed flag on: closed implies the completed flow ran.
func (r *DailyRecord) SetStatus(s Status) {
	switch s {
	case StatusClosed:
		r.IsClosed = true
		r.IsCompleted = true
	case StatusCompleted:
		r.IsClosed = false
		r.IsCompleted = true
	default:
		r.IsClosed = false
		r.IsCompleted = false
	}
}

// UnmarshalJSON applies the legacy status default: records written
// before the three-state model carry no isCompleted field and must
// decode as COMPLETED, not IN_PROGRESS.
func (r *DailyRecord) UnmarshalJSON(data []byte) error {
	type alias DailyRecord
	aux := struct {
		IsCompleted *bool `json:"isCompleted"`
		*alias
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.SetStatus(StatusFromFlags(r.IsClosed, aux.IsCompleted))
	return nil
}

// ValidateForSave checks the rules that block persistence entirely.
// A date is always required; a completed record additionally requires
// total sales to have been entered. Closed records skip the sales rule.
func (r *DailyRecord) ValidateForSave() error {
	if r.Date.IsZero() {
		return ErrDateRequired
	}
	if err := r.MorningSales.Validate(); err != nil {
		return err
	}
	if r.TotalSales != nil {
		if err := r.TotalSales.Validate(); err != nil {
			return err
		}
	}
	if r.Status() == StatusCompleted && r.TotalSales == nil {
		return ErrTotalSalesRequired
	}
	return nil
}

// NewRecordFromStructure materializes a fresh record for the given date
// from the taxonomy: one category per structure category in the same
// order, each item seeded with its template default and an empty photo
// list. The result shares no mutable state with the structure.
func NewRecordFromStructure(s Structure, date Date) DailyRecord {
	expenses := make([]ExpenseCategory, 0, len(s.Categories))
	for _, sc := range s.Categories {
		cat := ExpenseCategory{
			ID:    newID(),
			Name:  sc.Name,
			Items: make([]ExpenseItem, 0, len(sc.Items)),
		}
		for _, tmpl := range sc.Items {
			cat.Items = append(cat.Items, ExpenseItem{
				ID:     newID(),
				Name:   tmpl.Name,
				Amount: tmpl.DefaultValue,
			})
		}
		expenses = append(expenses, cat)
	}
	return DailyRecord{
		ID:       newID(),
		Date:     date,
		Expenses: expenses,
	}
}

// SetTotalSales records the day's total sales.
func (r *DailyRecord) SetTotalSales(m Money) {
	r.TotalSales = &m
}

// ClearTotalSales reverts total sales to "not entered".
func (r *DailyRecord) ClearTotalSales() {
	r.TotalSales = nil
}

func (r *DailyRecord) findItem(categoryID, itemID string) (*ExpenseItem, error) {
	for ci := range r.Expenses {
		if r.Expenses[ci].ID != categoryID {
			continue
		}
		for ii := range r.Expenses[ci].Items {
			if r.Expenses[ci].Items[ii].ID == itemID {
				return &r.Expenses[ci].Items[ii], nil
			}
		}
		return nil, ErrItemNotFound
	}
	return nil, ErrCategoryNotFound
}

// ApplyAmountEdit parses rawValue and sets the item's amount. An empty
// string means zero; non-numeric input is rejected so a typo is never
// masked as a zero expense.
func (r *DailyRecord) ApplyAmountEdit(categoryID, itemID, rawValue string) error {
	amount, err := ParseAmount(rawValue)
	if err != nil {
		return err
	}
	item, err := r.findItem(categoryID, itemID)
	if err != nil {
		return err
	}
	item.Amount = amount
	return nil
}

// ApplyPhotoEdit replaces the item's photo reference list wholesale.
// The caller manages add/remove locally and submits the final list.
func (r *DailyRecord) ApplyPhotoEdit(categoryID, itemID string, photos []string) error {
	item, err := r.findItem(categoryID, itemID)
	if err != nil {
		return err
	}
	item.BillPhotos = append([]string(nil), photos...)
	return nil
}

// AddCustomItem appends a one-off expense item (amount zero) to one of
// the record's categories. The name must not collide, case-insensitively,
// with an existing item in that category.
func (r *DailyRecord) AddCustomItem(categoryID, name string) (*ExpenseItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	for ci := range r.Expenses {
		if r.Expenses[ci].ID != categoryID {
			continue
		}
		for _, it := range r.Expenses[ci].Items {
			if strings.EqualFold(it.Name, name) {
				return nil, ErrDuplicateName
			}
		}
		r.Expenses[ci].Items = append(r.Expenses[ci].Items, ExpenseItem{
			ID:   newID(),
			Name: name,
		})
		return &r.Expenses[ci].Items[len(r.Expenses[ci].Items)-1], nil
	}
	return nil, ErrCategoryNotFound
}

// Clone returns a deep copy. Stores hand out clones so callers can
// never alias the persisted expense tree.
func (r DailyRecord) Clone() DailyRecord {
	out := r
	if r.TotalSales != nil {
		ts := *r.TotalSales
		out.TotalSales = &ts
	}
	out.Expenses = make([]ExpenseCategory, len(r.Expenses))
	for i, cat := range r.Expenses {
		c := cat
		c.Items = make([]ExpenseItem, len(cat.Items))
		for j, it := range cat.Items {
			item := it
			if it.BillPhotos != nil {
				item.BillPhotos = append([]string(nil), it.BillPhotos...)
			}
			c.Items[j] = item
		}
		out.Expenses[i] = c
	}
	return out
}
