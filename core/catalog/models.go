package catalog

import (
	"iter"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/maktaba/core"
)

// Categories
const (
	CategoryTextbooks      = "textbooks"
	CategoryResearchPapers = "research-papers"
	CategoryStudyGuides    = "study-guides"
	CategoryLectureNotes   = "lecture-notes"
	CategoryVideos         = "videos"

	// CategoryAll matches every category in a Filter.
	CategoryAll = "all"
)

// Roles
const (
	RoleAdmin = "admin"
)

// Entity kinds reported by core.NotFoundError
const (
	KindResource = "resource"
	KindOwner    = "owner"
)

var (
	Categories = []Category{
		{Name: "Textbooks", Value: CategoryTextbooks},
		{Name: "Research Papers", Value: CategoryResearchPapers},
		{Name: "Study Guides", Value: CategoryStudyGuides},
		{Name: "Lecture Notes", Value: CategoryLectureNotes},
		{Name: "Videos", Value: CategoryVideos},
	}

	categorySet = func() map[string]bool {
		set := make(map[string]bool, len(Categories))
		for _, c := range Categories {
			set[c.Value] = true
		}
		return set
	}()
)

func IsCategory(value string) bool {
	return categorySet[value]
}

type Category struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Owner struct {
	ID        string    `json:"id" db:"id" bson:"_id"` // contact email
	Name      string    `json:"name" db:"name" bson:"name"`
	Role      string    `json:"role" db:"role" bson:"role"`
	Suspended bool      `json:"suspended" db:"suspended" bson:"suspended"`
	CreatedAt time.Time `json:"created_at" db:"created_at" bson:"created_at"` // UTC
}

type Resource struct {
	ID          string    `json:"id" db:"id" bson:"_id"`
	Title       string    `json:"title" db:"title" bson:"title"`
	Description string    `json:"description" db:"description" bson:"description"`
	Category    string    `json:"category" db:"category" bson:"category"`
	OwnerID     string    `json:"owner_id" db:"owner_id" bson:"owner_id"`
	Flagged     bool      `json:"flagged" db:"flagged" bson:"flagged"`
	PublishedAt time.Time `json:"published_at" db:"published_at" bson:"published_at"` // UTC
}

// NewOwner contains information needed to register a publisher.
type NewOwner struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,notblank"`
}

func (no *NewOwner) Validate(validate *validator.Validate, translator ut.Translator) error {
	no.Email = core.CleanString(no.Email, true /* lower */)
	no.Name = core.CleanString(no.Name)
	return core.TranslateErrors(validate.Struct(no), translator)
}

// NewResource contains information needed to publish a Resource.
type NewResource struct {
	Title       string `json:"title" validate:"required,notblank"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"required,category"`
}

func (nr *NewResource) Validate(validate *validator.Validate, translator ut.Translator) error {
	nr.Title = core.CleanString(nr.Title)
	nr.Description = core.CleanString(nr.Description)
	nr.Category = core.CleanString(nr.Category, true /* lower */)
	return core.TranslateErrors(validate.Struct(nr), translator)
}

// Filter selects resources. Both predicates are ANDed.
type Filter struct {
	// Search does a case-insensitive substring match on Resource.Title or Resource.Description.
	Search string `query:"search"`
	// Category is an exact category or CategoryAll. Empty means CategoryAll.
	Category string `query:"category"`
}

func (f *Filter) Clean() {
	f.Search = core.CleanString(f.Search)
	f.Category = core.CleanString(f.Category, true /* lower */)
	if f.Category == "" {
		f.Category = CategoryAll
	}
}

func (f Filter) Validate() error {
	if f.Category != "" && f.Category != CategoryAll && !IsCategory(f.Category) {
		return core.NewValidationError(nil, core.FieldError{Field: "category", Error: invalidCategoryText})
	}
	return nil
}

func (f Filter) IsEmpty() bool {
	return f.Search == "" && (f.Category == "" || f.Category == CategoryAll)
}

func (f Filter) Match(r Resource) bool {
	if f.Category != "" && f.Category != CategoryAll && r.Category != f.Category {
		return false
	}
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(r.Title), q) || strings.Contains(strings.ToLower(r.Description), q)
}

// Select lazily yields the resources of `seq` matching `f`, preserving order.
// The returned sequence is restartable whenever `seq` is.
func Select(seq iter.Seq[Resource], f Filter) iter.Seq[Resource] {
	return func(yield func(Resource) bool) {
		for r := range seq {
			if f.Match(r) && !yield(r) {
				return
			}
		}
	}
}

// CategoryShare is one entry of a category distribution.
type CategoryShare struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Mine       int     `json:"mine"`
	Percentage float64 `json:"percentage"`
}

// Distribution counts `resources` per category, in order of first appearance.
// When `owner` is set, Mine reports that owner's share of each category.
func Distribution(resources []Resource, owner string) []CategoryShare {
	shares := make([]CategoryShare, 0, len(Categories))
	idx := make(map[string]int, len(Categories))
	for _, r := range resources {
		i, ok := idx[r.Category]
		if !ok {
			i = len(shares)
			idx[r.Category] = i
			shares = append(shares, CategoryShare{Category: r.Category})
		}
		shares[i].Count++
		if owner != "" && r.OwnerID == owner {
			shares[i].Mine++
		}
	}
	for i := range shares {
		shares[i].Percentage = core.Percentage(shares[i].Count, len(resources))
	}
	return shares
}
