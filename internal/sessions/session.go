package sessions

import (
	"time"

	"github.com/ourstory/scrapbook/internal/identity"
)

// Session is one live login. It stays valid until it is deleted by logout.
type Session struct {
	ID        string        `bson:"_id,omitempty" json:"id"`
	Role      identity.Role `bson:"role" json:"role"`
	Name      string        `bson:"name" json:"name"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}
