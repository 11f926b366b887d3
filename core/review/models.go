package review

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/maktaba/core"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID         string    `json:"id" db:"id" bson:"_id"`
	ResourceID string    `json:"resource_id" db:"resource_id" bson:"resource_id"`
	Author     string    `json:"author" db:"author" bson:"author"`
	Rating     int       `json:"rating" db:"rating" bson:"rating"`
	Comment    string    `json:"comment" db:"comment" bson:"comment"`
	CreatedAt  time.Time `json:"created_at" db:"created_at" bson:"created_at"` // UTC
}

// NewReview contains information needed to submit a Review.
type NewReview struct {
	ResourceID string `json:"resource_id" validate:"required"`
	Author     string `json:"author" validate:"required,notblank"`
	Rating     int    `json:"rating" validate:"rating"`
	Comment    string `json:"comment" validate:"required,notblank"`
}

func (nr *NewReview) Validate(validate *validator.Validate, translator ut.Translator) error {
	nr.ResourceID = core.CleanString(nr.ResourceID)
	nr.Author = core.CleanString(nr.Author)
	nr.Comment = core.CleanString(nr.Comment)
	return core.TranslateErrors(validate.Struct(nr), translator)
}

// Average is a mean rating. The exact value is kept for comparisons; Rounded is for display.
type Average float64

func (a Average) Exact() float64   { return float64(a) }
func (a Average) Rounded() float64 { return core.RoundTo(float64(a), 1) }

// RatingShare is one entry of a rating distribution.
type RatingShare struct {
	Rating     int     `json:"rating"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Stats are the aggregates of one resource.
type Stats struct {
	Average      float64       `json:"average"`
	AverageExact float64       `json:"average_exact"`
	Count        int           `json:"count"`
	Distribution []RatingShare `json:"distribution"`
}

// Tally counts reviews per rating value; index 0 holds one-star reviews.
type Tally [MaxRating]int

func NewTally(reviews []Review) Tally {
	var t Tally
	for _, rv := range reviews {
		t.Add(rv.Rating)
	}
	return t
}

// GroupByResource tallies `reviews` per resource ID.
func GroupByResource(reviews []Review) map[string]Tally {
	tallies := make(map[string]Tally)
	for _, rv := range reviews {
		t := tallies[rv.ResourceID]
		t.Add(rv.Rating)
		tallies[rv.ResourceID] = t
	}
	return tallies
}

// Add counts one rating. Out of range values are ignored.
func (t *Tally) Add(rating int) {
	if rating >= MinRating && rating <= MaxRating {
		t[rating-1]++
	}
}

func (t Tally) Of(rating int) int {
	if rating < MinRating || rating > MaxRating {
		return 0
	}
	return t[rating-1]
}

func (t Tally) Count() int {
	var n int
	for _, c := range t {
		n += c
	}
	return n
}

func (t Tally) Sum() int {
	var sum int
	for i, c := range t {
		sum += (i + 1) * c
	}
	return sum
}

// Average is 0 when there are no reviews.
func (t Tally) Average() Average {
	n := t.Count()
	if n == 0 {
		return 0
	}
	return Average(float64(t.Sum()) / float64(n))
}

// Distribution reports every rating from MinRating to MaxRating.
func (t Tally) Distribution() []RatingShare {
	n := t.Count()
	dist := make([]RatingShare, 0, MaxRating)
	for r := MinRating; r <= MaxRating; r++ {
		dist = append(dist, RatingShare{Rating: r, Count: t.Of(r), Percentage: core.Percentage(t.Of(r), n)})
	}
	return dist
}

func (t Tally) Stats() Stats {
	avg := t.Average()
	return Stats{
		Average:      avg.Rounded(),
		AverageExact: avg.Exact(),
		Count:        t.Count(),
		Distribution: t.Distribution(),
	}
}
