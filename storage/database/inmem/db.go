package inmemdb

import (
	"sync"

	"github.com/trezcool/maktaba/core/catalog"
	"github.com/trezcool/maktaba/core/review"
)

type (
	// DB is a process-local review store. One lock guards all tables so the
	// owner -> resources -> reviews join reads a consistent state.
	DB struct {
		mutex     sync.RWMutex
		owners    *ownerTable
		resources *resourceTable
		reviews   *reviewTable
	}

	ownerTable struct {
		table map[string]*catalog.Owner
		order []string
	}

	resourceTable struct {
		table map[string]*catalog.Resource
		order []string
	}

	reviewTable struct {
		rows       []review.Review
		byResource map[string][]int // resource ID -> row indexes
	}
)

func Open() *DB {
	db := new(DB)
	db.reset()
	return db
}

func (db *DB) reset() {
	db.owners = &ownerTable{table: make(map[string]*catalog.Owner)}
	db.resources = &resourceTable{table: make(map[string]*catalog.Resource)}
	db.reviews = &reviewTable{byResource: make(map[string][]int)}
}

// Reset drops every record.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.reset()
}

func (db *DB) Close() error { return nil }
