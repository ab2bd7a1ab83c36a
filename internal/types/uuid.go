package types

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	UUID_PREFIX_GRANT           = "grant"
	UUID_PREFIX_CUSTOMER        = "cust"
	UUID_PREFIX_SUBSCRIPTION    = "subs"
	UUID_PREFIX_PLAN            = "plan"
	UUID_PREFIX_COURSE          = "course"
	UUID_PREFIX_COURSE_MODULE   = "cmod"
	UUID_PREFIX_LESSON          = "lesson"
	UUID_PREFIX_CHAPTER         = "chapter"
	UUID_PREFIX_PRODUCT         = "prod"
	UUID_PREFIX_BUNDLE          = "bundle"
	UUID_PREFIX_PROGRESS        = "prog"
	UUID_PREFIX_ENROLLMENT      = "enr"
	UUID_PREFIX_REQUEST         = "req"
	UUID_PREFIX_WEBHOOK_EVENT   = "whevt"
	UUID_PREFIX_SIDE_EFFECT_MSG = "semsg"
)

// GenerateUUID returns a lowercase k-sortable unique identifier
func GenerateUUID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String()
}

// GenerateUUIDWithPrefix returns a unique identifier with a readable entity prefix
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}
