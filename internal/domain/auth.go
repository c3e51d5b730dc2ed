package domain

import "time"

// SubjectType identifies who a token was issued to.
type SubjectType string

const SubjectTypeAdmin SubjectType = "ADMIN"

// Token is metadata about an issued admin token.
type Token struct {
	ID        string
	Subject   SubjectType
	ExpiresAt time.Time
	IssuedAt  time.Time
}
