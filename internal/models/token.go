package models

import (
	"time"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by the auth service on login or refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
