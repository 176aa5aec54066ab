package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeleteDecision(t *testing.T) {
	author := &User{ID: 1, Username: "author"}
	other := &User{ID: 2, Username: "other"}
	admin := &User{ID: 3, Username: "admin", IsSuperuser: true}
	post := &Post{ID: 10, AuthorID: author.ID}

	tests := []struct {
		name    string
		user    *User
		allowed bool
		reason  denyReason
	}{
		{"anonymous", nil, false, denyAnonymous},
		{"author", author, true, denyNone},
		{"other user", other, false, denyNotOwner},
		{"superuser", admin, true, denyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := deleteDecision(tt.user, post)
			assert.Equal(t, tt.allowed, d.allowed)
			assert.Equal(t, tt.reason, d.reason)
			assert.Equal(t, tt.allowed, canDelete(tt.user, post))
		})
	}
}

func TestDenyReasonString(t *testing.T) {
	assert.Equal(t, "", denyNone.String())
	assert.Equal(t, "login required", denyAnonymous.String())
	assert.Contains(t, denyNotOwner.String(), "author")
}
