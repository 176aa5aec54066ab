package main

type denyReason int

const (
	denyNone denyReason = iota
	denyAnonymous
	denyNotOwner
)

func (r denyReason) String() string {
	switch r {
	case denyAnonymous:
		return "login required"
	case denyNotOwner:
		return "only the author or a superuser may delete this post"
	default:
		return ""
	}
}

type decision struct {
	allowed bool
	reason  denyReason
}

func allow() decision {
	return decision{allowed: true}
}

func deny(reason denyReason) decision {
	return decision{reason: reason}
}

// deleteDecision decides whether user may delete post. A nil user is anonymous.
func deleteDecision(user *User, post *Post) decision {
	switch {
	case user == nil:
		return deny(denyAnonymous)
	case user.IsSuperuser, user.ID == post.AuthorID:
		return allow()
	default:
		return deny(denyNotOwner)
	}
}

func canDelete(user *User, post *Post) bool {
	return deleteDecision(user, post).allowed
}
