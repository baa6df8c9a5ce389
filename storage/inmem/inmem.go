// Package inmemdb provides map-backed implementations of the storage
// interfaces for tests.
package inmemdb

import (
	"sync"
	"time"

	"github.com/himanshhhhuv/studentinfo/core/event"
	"github.com/himanshhhhuv/studentinfo/core/student"
	"github.com/himanshhhhuv/studentinfo/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users         map[string]*user.User
	events        map[string]*event.Event
	studentInfo   map[string]*student.Info
	registrations map[string]*user.Registration
	ownedDocs     map[string][]string // userID -> opaque doc IDs
	reservations  map[string]time.Time
}

func NewDB() *DB {
	return &DB{
		users:         make(map[string]*user.User),
		events:        make(map[string]*event.Event),
		studentInfo:   make(map[string]*student.Info),
		registrations: make(map[string]*user.Registration),
		ownedDocs:     make(map[string][]string),
		reservations:  make(map[string]time.Time),
	}
}
